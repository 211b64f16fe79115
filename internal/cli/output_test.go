package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much longer value", 10, "much lo..."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.max))
	}
}

func TestFormatStatus(t *testing.T) {
	assert.Equal(t, "[+] active", formatStatus("active"))
	assert.Equal(t, "[-] rejected", formatStatus("rejected"))
	assert.Equal(t, "[*] pending", formatStatus("pending"))
	assert.Equal(t, "unknown", formatStatus("unknown"))
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "****-****-****-D4E5", maskKey("AB12-CD34-EF56-D4E5"))
	assert.Equal(t, "abc", maskKey("abc"))
}

func TestFormatMinor(t *testing.T) {
	assert.Equal(t, "4999.00", formatMinor(499900))
	assert.Equal(t, "0.05", formatMinor(5))
}

func TestTable_Render(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable("ID", "PLAN")
	table.writer = &buf
	table.AddRow("1", "personal")
	table.AddRow("22", "pro")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "--")
	assert.Contains(t, lines[3], "pro")
}
