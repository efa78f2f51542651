package merge

import (
	"bytes"

	"github.com/sdejongh/mergetree/pkg/models"
)

// Conflict marker layout (diff3 style). The BASE section is included so
// a human resolver can see what each side changed relative to, not just
// that the sides differ.
const (
	markerLocalHeader  = "<<<<<<< LOCAL (current)"
	markerBaseHeader   = "||||||| BASE (common ancestor)"
	markerSeparator    = "======="
	markerRemoteHeader = ">>>>>>> REMOTE (incoming)"

	placeholderDeleted  = "(file deleted)"
	placeholderNonexist = "(file did not exist)"
)

// RenderMarker produces the deterministic three-section conflict block
// for a single file. Each section's content has trailing newlines
// stripped and is re-terminated with exactly one newline, so
// concatenation never produces blank-line drift. Formatting the same
// record twice yields byte-identical output.
func RenderMarker(record *models.ConflictRecord) []byte {
	var buf bytes.Buffer

	buf.WriteString(markerLocalHeader)
	buf.WriteByte('\n')
	writeSection(&buf, record.LocalContent, placeholderDeleted)

	buf.WriteString(markerBaseHeader)
	buf.WriteByte('\n')
	writeSection(&buf, record.BaseContent, placeholderNonexist)

	buf.WriteString(markerSeparator)
	buf.WriteByte('\n')
	writeSection(&buf, record.RemoteContent, placeholderDeleted)

	buf.WriteString(markerRemoteHeader)
	buf.WriteByte('\n')

	return buf.Bytes()
}

// writeSection writes one marker section: the content with trailing
// newlines stripped plus exactly one terminating newline, or the
// placeholder when the file does not exist at that point (nil content,
// distinct from an existing empty file)
func writeSection(buf *bytes.Buffer, content []byte, placeholder string) {
	if content == nil {
		buf.WriteString(placeholder)
		buf.WriteByte('\n')
		return
	}

	buf.Write(bytes.TrimRight(content, "\n"))
	buf.WriteByte('\n')
}
