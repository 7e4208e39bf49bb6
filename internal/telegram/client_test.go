package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"caixa/internal/log"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Level: slog.LevelError})
}

func TestSendMessage(t *testing.T) {
	var gotPath, gotChat, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotChat = r.FormValue("chat_id")
		gotText = r.FormValue("text")
		fmt.Fprint(w, `{"ok":true,"result":{}}`)
	}))
	defer srv.Close()

	c := NewClient("TOKEN", testLogger(), WithBaseURL(srv.URL))
	if err := c.SendMessage(context.Background(), "42", "olá"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotPath != "/botTOKEN/sendMessage" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotChat != "42" || gotText != "olá" {
		t.Fatalf("sent chat=%q text=%q", gotChat, gotText)
	}
}

func TestSendMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"ok":false,"description":"chat not found"}`)
	}))
	defer srv.Close()

	c := NewClient("TOKEN", testLogger(), WithBaseURL(srv.URL))
	err := c.SendMessage(context.Background(), "42", "oi")
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestPollDispatchesAndReplies(t *testing.T) {
	var polls atomic.Int32
	var replyChat, replyText string
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botTOKEN/getUpdates":
			if polls.Add(1) == 1 {
				fmt.Fprint(w, `{"ok":true,"result":[{"update_id":7,"message":{"chat":{"id":42},"text":"/saldo"}}]}`)
				return
			}
			if err := r.ParseForm(); err == nil && r.FormValue("offset") != "8" {
				t.Errorf("offset = %q, want 8", r.FormValue("offset"))
			}
			fmt.Fprint(w, `{"ok":true,"result":[]}`)
		case "/botTOKEN/sendMessage":
			if err := r.ParseForm(); err != nil {
				t.Errorf("parse form: %v", err)
			}
			replyChat = r.FormValue("chat_id")
			replyText = r.FormValue("text")
			fmt.Fprint(w, `{"ok":true,"result":{}}`)
			cancel() // reply observed, stop the loop
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient("TOKEN", testLogger(), WithBaseURL(srv.URL))
	err := c.Poll(ctx, func(_ context.Context, chatID int64, text string) string {
		if chatID != 42 || text != "/saldo" {
			t.Errorf("handler got chat=%d text=%q", chatID, text)
		}
		return "💼 Saldo: R$ 0,00"
	})
	if err != context.Canceled {
		t.Fatalf("Poll = %v", err)
	}
	if replyChat != "42" || replyText != "💼 Saldo: R$ 0,00" {
		t.Fatalf("reply chat=%q text=%q", replyChat, replyText)
	}
}
