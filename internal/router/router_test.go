// ABOUTME: Tests for frame routing, malformed-frame handling, and the thinking indicator
// ABOUTME: Uses a recording handler to observe which branch each frame reached
package router

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramborogers/cyberai-tui/internal/protocol"
)

type recorder struct {
	calls   []string
	chunks  []*protocol.ChunkPayload
	models  []protocol.Model
	removed []int64
	fail    error
}

func (r *recorder) hit(name string) error {
	r.calls = append(r.calls, name)
	return r.fail
}

func (r *recorder) OnSystem(p *protocol.ContentPayload) error    { return r.hit("system") }
func (r *recorder) OnStatus(p *protocol.StatusPayload) error     { return r.hit("status") }
func (r *recorder) OnError(p *protocol.ErrorPayload) error       { return r.hit("error") }
func (r *recorder) OnUserMessage(m *protocol.Message) error      { return r.hit("user_message") }
func (r *recorder) OnAssistantMessage(m *protocol.Message) error { return r.hit("assistant_message") }
func (r *recorder) OnChatList(chats []protocol.Chat) error       { return r.hit("chat_list") }

func (r *recorder) OnChunk(c *protocol.ChunkPayload) error {
	r.chunks = append(r.chunks, c)
	return r.hit("assistant_chunk")
}

func (r *recorder) OnModelList(models []protocol.Model) error {
	r.models = models
	return r.hit("model_list")
}

func (r *recorder) OnRemove(p *protocol.RemovePayload) error {
	r.removed = append(r.removed, p.MessageID)
	return r.hit("remove_message")
}

type indicator struct {
	thinking bool
	sets     int
}

func (i *indicator) SetThinking(on bool) {
	i.thinking = on
	i.sets++
}

func newRouter() (*Router, *recorder, *indicator) {
	rec := &recorder{}
	ind := &indicator{thinking: true}
	return New(rec, ind), rec, ind
}

func TestDispatch_RoutesEveryKnownType(t *testing.T) {
	frames := map[string]string{
		"system":            `{"type":"system","content_payload":{"content":"welcome"}}`,
		"status":            `{"type":"status","status_payload":{"message":"generating"}}`,
		"error":             `{"type":"error","error_payload":{"message":"boom"}}`,
		"user_message":      `{"type":"user_message","message_payload":{"id":1,"chat_id":7,"role":"user","content":"hi"}}`,
		"assistant_message": `{"type":"assistant_message","message_payload":{"id":2,"chat_id":7,"role":"assistant","content":"yo","tokens_used":5}}`,
		"assistant_chunk":   `{"type":"assistant_chunk","chunk_payload":{"chat_id":7,"message_id":2,"content":"y"}}`,
		"model_list":        `{"type":"model_list","model_list_payload":[{"id":1,"name":"llama3"}]}`,
		"chat_list":         `{"type":"chat_list","chat_list_payload":[{"id":7,"title":"t"}]}`,
		"remove_message":    `{"type":"remove_message","remove_payload":{"chat_id":7,"message_id":2}}`,
	}

	for typ, frame := range frames {
		t.Run(typ, func(t *testing.T) {
			r, rec, _ := newRouter()
			require.NoError(t, r.Dispatch([]byte(frame)))
			assert.Equal(t, []string{typ}, rec.calls)
			assert.Equal(t, 1, r.Stats().Routed[typ])
		})
	}
}

func TestDispatch_ClearsIndicatorExceptStatus(t *testing.T) {
	r, _, ind := newRouter()

	require.NoError(t, r.Dispatch([]byte(`{"type":"assistant_chunk","chunk_payload":{"chat_id":7,"message_id":2,"content":"y"}}`)))
	assert.False(t, ind.thinking)

	require.NoError(t, r.Dispatch([]byte(`{"type":"status","status_payload":{"message":"Processing request"}}`)))
	assert.True(t, ind.thinking, "status may re-arm the indicator")

	require.NoError(t, r.Dispatch([]byte(`{"type":"status","status_payload":{"message":"Generation Complete"}}`)))
	assert.False(t, ind.thinking)
}

func TestDispatch_ErrorClearsIndicator(t *testing.T) {
	r, _, ind := newRouter()

	require.NoError(t, r.Dispatch([]byte(`{"type":"error","error_payload":{"message":"rate limited"}}`)))

	assert.False(t, ind.thinking)
}

func TestDispatch_MalformedJSON(t *testing.T) {
	r, rec, ind := newRouter()

	err := r.Dispatch([]byte(`{"type":"assistant_chunk","chunk_payload":`))

	assert.ErrorIs(t, err, protocol.ErrMalformedFrame)
	assert.Empty(t, rec.calls)
	assert.Zero(t, ind.sets, "malformed frames change no state")
	assert.Equal(t, 1, r.Stats().Malformed)
}

func TestDispatch_MissingPayload(t *testing.T) {
	r, rec, ind := newRouter()

	err := r.Dispatch([]byte(`{"type":"assistant_chunk"}`))

	assert.ErrorIs(t, err, protocol.ErrMalformedFrame)
	assert.Empty(t, rec.calls)
	assert.Zero(t, ind.sets)
}

func TestDispatch_UnknownType(t *testing.T) {
	r, rec, ind := newRouter()

	err := r.Dispatch([]byte(`{"type":"typing","content_payload":{"content":"..."}}`))

	assert.NoError(t, err)
	assert.Empty(t, rec.calls)
	assert.Zero(t, ind.sets)
	assert.Equal(t, 1, r.Stats().Unknown)
}

func TestDispatch_PreservesOrder(t *testing.T) {
	r, rec, _ := newRouter()

	for _, c := range []string{"a", "b", "c"} {
		frame := `{"type":"assistant_chunk","chunk_payload":{"chat_id":7,"message_id":2,"content":"` + c + `"}}`
		require.NoError(t, r.Dispatch([]byte(frame)))
	}

	require.Len(t, rec.chunks, 3)
	assert.Equal(t, "a", rec.chunks[0].Content)
	assert.Equal(t, "c", rec.chunks[2].Content)
}

func TestDispatch_HandlerErrorIsWrapped(t *testing.T) {
	r, rec, _ := newRouter()
	rec.fail = errors.New("store exploded")

	err := r.Dispatch([]byte(`{"type":"remove_message","remove_payload":{"message_id":9}}`))

	require.Error(t, err)
	assert.ErrorIs(t, err, rec.fail)
	assert.Contains(t, err.Error(), "handle remove_message")
	assert.Equal(t, []int64{9}, rec.removed)
}

func TestIsCompletionStatus(t *testing.T) {
	assert.True(t, IsCompletionStatus("Response COMPLETE"))
	assert.True(t, IsCompletionStatus("finished streaming"))
	assert.False(t, IsCompletionStatus("thinking"))
}
