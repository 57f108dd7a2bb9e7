package feed

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-go-golems/pickem/pkg/effects/effectstest"
	"github.com/go-go-golems/pickem/pkg/store"
	"github.com/go-go-golems/pickem/pkg/transport/transporttest"
	"github.com/stretchr/testify/require"
)

func TestCreatePostRefetchesFirstPage(t *testing.T) {
	h := effectstest.New(t, []store.Domain{Slice().Domain()}, Saga())
	h.Fake.Respond(http.MethodPost, "/feed", 201, `{"message":"Posted"}`)
	h.Fake.Respond(http.MethodGet, "/feed", 200, `{"data":{"items":[{"id":"f1","user_id":"u1","content":"hammer the over"}]}}`)

	h.Store.Dispatch(CreatePost.Request(PostParams{Content: "hammer the over"}))
	effectstest.Settled(t, h, FetchFeed)

	st := effectstest.State[State](t, h, Name)
	require.Equal(t, "Posted", st.Message)
	require.Len(t, st.Items, 1)

	get := h.Fake.Calls()[1]
	require.Equal(t, map[string]string{"page": "0", "limit": "10", "sort_by": "created_at"}, get.Params)
}

func TestFetchFeedLatestWins(t *testing.T) {
	h := effectstest.New(t, []store.Domain{Slice().Domain()}, Saga())
	h.Fake.Hold(http.MethodGet, "/feed")

	h.Store.Dispatch(FetchFeed.Request(ListParams{Page: 0}))
	h.Store.Dispatch(FetchFeed.Request(ListParams{Page: 1}))
	held, ok := h.Fake.WaitHeld(http.MethodGet, "/feed", 2, 2*time.Second)
	require.True(t, ok)
	byPage := map[string]*transporttest.Call{}
	for _, c := range held {
		byPage[c.Request.Params["page"]] = c
	}

	byPage["1"].Resolve(`{"data":{"items":[{"id":"page1"}]}}`)
	effectstest.Settled(t, h, FetchFeed)
	byPage["0"].Resolve(`{"data":{"items":[{"id":"page0"}]}}`)

	h.Eventually(t, func() bool { return h.Runtime.InFlight(FetchFeed.RequestType()) == 0 })
	st := effectstest.State[State](t, h, Name)
	require.Equal(t, "page1", st.Items[0].ID)
	require.False(t, st.Loading)
}
