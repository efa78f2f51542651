package diff

// binarySniffLen is how many leading bytes are sampled to decide whether
// a file is binary
const binarySniffLen = 8192

// nonTextThreshold is the fraction of non-text bytes above which a
// sample is treated as binary
const nonTextThreshold = 0.30

// isBinaryData reports whether a content sample looks like binary data.
// A NUL byte is taken as a definitive marker; otherwise the ratio of
// bytes outside the printable/whitespace range decides. The heuristic
// can misclassify NUL-heavy text encodings (UTF-16 and friends) as
// binary; such files fall back to whole-file copy semantics instead of
// textual conflict markers.
func isBinaryData(sample []byte) bool {
	if len(sample) == 0 {
		return false
	}

	nonText := 0
	for _, b := range sample {
		if b == 0x00 {
			return true
		}
		if b < 0x07 || (b > 0x0d && b < 0x20) || b == 0x7f {
			nonText++
		}
	}

	return float64(nonText)/float64(len(sample)) > nonTextThreshold
}
