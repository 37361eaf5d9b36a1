package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/billroom/internal/encoding"
)

func decodeAll(t *testing.T, in []byte) (string, encoding.Charset) {
	t.Helper()

	r, cs, err := encoding.Decode(bytes.NewReader(in))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), cs
}

func TestDecode(t *testing.T) {
	type testCase struct {
		name    string
		input   []byte
		want    string
		wantSet encoding.Charset
	}

	tests := []testCase{
		{
			name:    "utf-8 passes through",
			input:   []byte("Name;Role;Room\nGajera Hansaben;Sales;150\n"),
			want:    "Name;Role;Room\nGajera Hansaben;Sales;150\n",
			wantSet: encoding.UTF8,
		},
		{
			name:    "utf-8 bom is dropped",
			input:   append([]byte{0xEF, 0xBB, 0xBF}, "Name;Role;Room\n"...),
			want:    "Name;Role;Room\n",
			wantSet: encoding.UTF8BOM,
		},
		{
			name:    "utf-16le with bom",
			input:   []byte{0xFF, 0xFE, 'N', 0, 'a', 0, 'm', 0, 'e', 0},
			want:    "Name",
			wantSet: encoding.UTF16LE,
		},
		{
			name:    "utf-16be with bom",
			input:   []byte{0xFE, 0xFF, 0, 'R', 0, 'o', 0, 'o', 0, 'm'},
			want:    "Room",
			wantSet: encoding.UTF16BE,
		},
		{
			// "Café Ré;Sales;150" in Windows-1252: é = 0xE9
			name:  "legacy single-byte export",
			input: []byte{'C', 'a', 'f', 0xE9, ' ', 'R', 0xE9, ';', 'S', 'a', 'l', 'e', 's', ';', '1', '5', '0', '\n'},
			want:  "Café Ré;Sales;150\n",
		},
		{
			name:    "empty input",
			input:   nil,
			want:    "",
			wantSet: encoding.UTF8,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, cs := decodeAll(t, tc.input)

			assert.Equal(t, tc.want, got)

			if tc.wantSet != "" {
				assert.Equal(t, tc.wantSet, cs)
			}
		})
	}
}

func TestDecode_RuneSplitBySniffWindow(t *testing.T) {
	// Place a two-byte rune across the sniff boundary.
	input := strings.Repeat("a", 4095) + "é;Sales;150\n"

	got, cs := decodeAll(t, []byte(input))

	assert.Equal(t, encoding.UTF8, cs)
	assert.Equal(t, input, got)
}
