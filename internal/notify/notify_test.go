package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricepoint-backend/internal/domain"
)

func TestFeed(t *testing.T) {
	f := NewFeed()
	for i := 0; i < 12; i++ {
		f.Notify(context.Background(), fmt.Sprintf("m%d", i))
	}

	list := f.List()
	require.Len(t, list, FeedSize)
	assert.Equal(t, "m11", list[0])
	assert.Equal(t, "m2", list[FeedSize-1])

	list[0] = "changed"
	assert.Equal(t, "m11", f.List()[0])
}

func TestFeed_Concurrent(t *testing.T) {
	f := NewFeed()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f.Notify(context.Background(), fmt.Sprint(i))
			_ = f.List()
		}(i)
	}
	wg.Wait()
	assert.Len(t, f.List(), FeedSize)
}

type staticSettings struct {
	s   domain.Settings
	err error
}

func (s staticSettings) LoadSettings(context.Context) (*domain.Settings, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &s.s, nil
}

func TestTelegram_Send(t *testing.T) {
	type call struct {
		path, chat, text string
	}
	calls := make(chan call, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		calls <- call{path: r.URL.Path, chat: r.PostForm.Get("chat_id"), text: r.PostForm.Get("text")}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := NewTelegram(staticSettings{s: domain.Settings{TelegramBotToken: "tok", TelegramChatID: "42"}}, domain.Settings{}, nil)
	tg.APIBase = srv.URL

	require.NoError(t, tg.Send(context.Background(), "Quote <QT-1> updated"))
	c := <-calls
	assert.Equal(t, "/bottok/sendMessage", c.path)
	assert.Equal(t, "42", c.chat)
	assert.Contains(t, c.text, "Quote &lt;QT-1&gt; updated")

	tg.Notify(context.Background(), "async")
	tg.Wait()
	c = <-calls
	assert.Contains(t, c.text, "async")
}

func TestTelegram_Fallback(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/botcfg/sendMessage", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	tg := NewTelegram(staticSettings{err: fmt.Errorf("db down")}, domain.Settings{TelegramBotToken: "cfg", TelegramChatID: "1"}, nil)
	tg.APIBase = srv.URL

	err := tg.Send(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, int32(1), hits.Load())
}

func TestTelegram_SkipWithoutToken(t *testing.T) {
	tg := NewTelegram(nil, domain.Settings{}, nil)
	tg.APIBase = "http://127.0.0.1:1"
	assert.NoError(t, tg.Send(context.Background(), "x"))
}

func TestMulti(t *testing.T) {
	a, b := NewFeed(), NewFeed()
	Multi{a, nil, b}.Notify(context.Background(), "hi")
	assert.Equal(t, []string{"hi"}, a.List())
	assert.Equal(t, []string{"hi"}, b.List())
}
