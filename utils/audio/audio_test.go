package audio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPCMBytesToWavBytes_Header(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	wav, err := PCMBytesToWavBytes(pcm, 1, 24000)
	require.NoError(t, err)
	require.Len(t, wav, 44+len(pcm))

	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "fmt ", string(wav[12:16]))
	assert.Equal(t, "data", string(wav[36:40]))

	assert.Equal(t, uint32(36+len(pcm)), binary.LittleEndian.Uint32(wav[4:8]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[20:22]), "PCM format tag")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:24]), "channels")
	assert.Equal(t, uint32(24000), binary.LittleEndian.Uint32(wav[24:28]), "sample rate")
	assert.Equal(t, uint32(48000), binary.LittleEndian.Uint32(wav[28:32]), "byte rate")
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(wav[34:36]), "bits per sample")
	assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
	assert.Equal(t, pcm, wav[44:])
}

func TestPCMBytesToWavBytes_RejectsBadInput(t *testing.T) {
	_, err := PCMBytesToWavBytes(nil, 1, 24000)
	assert.Error(t, err)

	_, err = PCMBytesToWavBytes([]byte{1, 2}, 3, 24000)
	assert.Error(t, err)

	_, err = PCMBytesToWavBytes([]byte{1, 2, 3}, 1, 24000)
	assert.Error(t, err, "odd byte count is not 16-bit PCM")

	_, err = PCMBytesToWavBytes([]byte{1, 2}, 1, 0)
	assert.Error(t, err)
}

func TestStripWAVHeaderIfPresent_RoundTrip(t *testing.T) {
	pcm := []byte{10, 20, 30, 40, 50, 60}
	wav, err := PCMBytesToWavBytes(pcm, 1, 8000)
	require.NoError(t, err)

	stripped, err := StripWAVHeaderIfPresent(wav)
	require.NoError(t, err)
	assert.Equal(t, pcm, stripped)
}

func TestStripWAVHeaderIfPresent_PassesThroughRawPCM(t *testing.T) {
	raw := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}
	out, err := StripWAVHeaderIfPresent(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestStripWAVHeaderIfPresent_SkipsExtraSubchunks(t *testing.T) {
	// RIFF/WAVE with a LIST chunk before data.
	var wav []byte
	wav = append(wav, []byte("RIFF")...)
	wav = binary.LittleEndian.AppendUint32(wav, 0)
	wav = append(wav, []byte("WAVE")...)
	wav = append(wav, []byte("LIST")...)
	wav = binary.LittleEndian.AppendUint32(wav, 4)
	wav = append(wav, []byte("INFO")...)
	wav = append(wav, []byte("data")...)
	wav = binary.LittleEndian.AppendUint32(wav, 2)
	wav = append(wav, 0xAA, 0xBB)

	stripped, err := StripWAVHeaderIfPresent(wav)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, stripped)
}

func TestULawBytesToPCM_Expands(t *testing.T) {
	pcm := ULawBytesToPCM([]byte{0x00, 0x7F, 0xFF})
	assert.Len(t, pcm, 6, "each µ-law byte becomes one 16-bit sample")
}

func TestGetPCMDurationSeconds(t *testing.T) {
	// One second of mono 16-bit audio at 8 kHz.
	pcm := make([]byte, 16000)
	seconds, err := GetPCMDurationSeconds(pcm, 1, 8000)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, seconds, 1e-9)

	_, err = GetPCMDurationSeconds(pcm[:3], 1, 8000)
	assert.Error(t, err)
}
