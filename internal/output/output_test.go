package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_Status(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.Status("→", "checking docker")
	assert.Equal(t, "→ checking docker\n", buf.String())
}

func TestWriter_StatusNoIcon(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.Status("", "detail line")
	assert.Equal(t, "   detail line\n", buf.String())
}

func TestWriter_Icons(t *testing.T) {
	tests := []struct {
		name string
		call func(w *Writer)
		want string
	}{
		{"success", func(w *Writer) { w.Success("done") }, "✅ done\n"},
		{"warning", func(w *Writer) { w.Warning("careful") }, "⚠️  careful\n"},
		{"error", func(w *Writer) { w.Error("broken") }, "❌ broken\n"},
		{"info", func(w *Writer) { w.Info("note") }, "ℹ️  note\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.call(New(&buf))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriter_Successf(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Successf("%d gates passed", 4)
	assert.Equal(t, "✅ 4 gates passed\n", buf.String())
}

func TestWriter_Header(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Header("Doctor")
	assert.Equal(t, "Doctor\n======\n", buf.String())
}

func TestWriter_Code(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Code("mkdir -p src\ntouch .env")

	assert.Contains(t, buf.String(), "  mkdir -p src\n")
	assert.Contains(t, buf.String(), "  touch .env\n")
}
