package render

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"math"
)

const (
	pngSignatureLength = 8
	pngChunkOverhead   = 12
	physChunkType      = "pHYs"
	physDataLength     = 9
	physUnitMeter      = 1
	inchesPerMeter     = 1 / 0.0254
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

var errMalformedPNG = errors.New("malformed png stream")

// withPhysicalDPI inserts a pHYs chunk right after IHDR so viewers and
// printers pick up the intended resolution.
func withPhysicalDPI(encoded []byte, dpi int) ([]byte, error) {
	if len(encoded) < pngSignatureLength+pngChunkOverhead || !bytes.Equal(encoded[:pngSignatureLength], pngSignature) {
		return nil, errMalformedPNG
	}
	headerLength := int(binary.BigEndian.Uint32(encoded[pngSignatureLength:]))
	headerEnd := pngSignatureLength + pngChunkOverhead + headerLength
	if headerEnd > len(encoded) || string(encoded[pngSignatureLength+4:pngSignatureLength+8]) != "IHDR" {
		return nil, errMalformedPNG
	}
	pixelsPerMeter := uint32(math.Round(float64(dpi) * inchesPerMeter))

	chunk := make([]byte, 0, pngChunkOverhead+physDataLength)
	chunk = binary.BigEndian.AppendUint32(chunk, physDataLength)
	chunk = append(chunk, physChunkType...)
	chunk = binary.BigEndian.AppendUint32(chunk, pixelsPerMeter)
	chunk = binary.BigEndian.AppendUint32(chunk, pixelsPerMeter)
	chunk = append(chunk, physUnitMeter)
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))

	output := make([]byte, 0, len(encoded)+len(chunk))
	output = append(output, encoded[:headerEnd]...)
	output = append(output, chunk...)
	output = append(output, encoded[headerEnd:]...)
	return output, nil
}
