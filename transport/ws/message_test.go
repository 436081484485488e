package ws

import (
	"encoding/base64"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTurnRequest_Text(t *testing.T) {
	req, err := decodeTurnRequest(7, []byte(`{"text_message":"hola","persona_id":1,"practice_topic_id":3}`))
	require.NoError(t, err)

	assert.Equal(t, "hola", req.Text)
	assert.Empty(t, req.Audio)
	assert.Equal(t, int64(1), req.PersonaID)
	assert.Equal(t, int64(7), req.LanguageProfileID)
	require.NotNil(t, req.PracticeTopicID)
	assert.Equal(t, int64(3), *req.PracticeTopicID)
}

func TestDecodeTurnRequest_TopicIsOptional(t *testing.T) {
	req, err := decodeTurnRequest(7, []byte(`{"text_message":"hola","persona_id":1}`))
	require.NoError(t, err)
	assert.Nil(t, req.PracticeTopicID)
}

func TestDecodeTurnRequest_WavAudioPassedThrough(t *testing.T) {
	wav := []byte("RIFF....WAVEfake")
	payload := `{"audio_data":"` + base64.StdEncoding.EncodeToString(wav) + `","persona_id":1}`

	req, err := decodeTurnRequest(7, []byte(payload))
	require.NoError(t, err)
	assert.Equal(t, wav, req.Audio)
	assert.Empty(t, req.Text)
	assert.True(t, req.IsAudio())
}

func TestDecodeTurnRequest_ULawIsRewrappedAsWav(t *testing.T) {
	ulaw := []byte{0x00, 0x7F, 0xFF, 0x80}
	payload := `{"audio_data":"` + base64.StdEncoding.EncodeToString(ulaw) + `","audio_format":"ulaw","persona_id":1}`

	req, err := decodeTurnRequest(7, []byte(payload))
	require.NoError(t, err)

	// 44-byte WAV header plus one 16-bit sample per G.711 byte, 8 kHz mono.
	require.Len(t, req.Audio, 44+2*len(ulaw))
	assert.Equal(t, "RIFF", string(req.Audio[0:4]))
	assert.Equal(t, uint32(8000), binary.LittleEndian.Uint32(req.Audio[24:28]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(req.Audio[22:24]))
}

func TestDecodeTurnRequest_Rejections(t *testing.T) {
	_, err := decodeTurnRequest(7, []byte(`{"persona_id":1}`))
	assert.ErrorIs(t, err, errEmptyTurn)

	_, err = decodeTurnRequest(7, []byte(`not json`))
	assert.Error(t, err)

	_, err = decodeTurnRequest(7, []byte(`{"audio_data":"%%%","persona_id":1}`))
	assert.Error(t, err)

	_, err = decodeTurnRequest(7, []byte(`{"audio_data":"AAAA","audio_format":"opus","persona_id":1}`))
	assert.ErrorContains(t, err, "unsupported audio format")
}
