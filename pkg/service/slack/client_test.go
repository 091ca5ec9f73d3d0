package slack_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"github.com/secmon-lab/riskpilot/pkg/service/slack"
)

func TestNew(t *testing.T) {
	t.Run("returns error when token is empty", func(t *testing.T) {
		_, err := slack.New("")
		gt.Value(t, err).NotNil()
	})

	t.Run("creates service when token is provided", func(t *testing.T) {
		svc, err := slack.New("test-token")
		gt.NoError(t, err).Required()
		gt.Value(t, svc).NotNil()
	})
}

func newFakeSlack(t *testing.T) (*httptest.Server, *atomic.Int32, *atomic.Int32) {
	var posts, infos atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "chat.postMessage"):
			posts.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "channel": "C123", "ts": "1700000000.000100"})
		case strings.HasSuffix(r.URL.Path, "conversations.info"):
			infos.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "channel": map[string]any{"id": "C123", "name": "risk-alerts"}})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "unknown_method"})
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &posts, &infos
}

func TestClient_PostMessage(t *testing.T) {
	srv, posts, _ := newFakeSlack(t)
	svc, err := slack.New("xoxb-test", slack.WithAPIURL(srv.URL+"/"))
	gt.NoError(t, err).Required()

	blocks, text := slack.BuildRiskAlert(
		&model.Project{Name: "Launch"},
		&model.Risk{Title: "Data loss", Probability: 9, Impact: 9, Category: types.CategoryTechnical},
		"",
	)
	ts, err := svc.PostMessage(context.Background(), "C123", blocks, text)
	gt.NoError(t, err).Required()
	gt.Value(t, ts).Equal("1700000000.000100")
	gt.Value(t, posts.Load()).Equal(int32(1))
}

func TestClient_GetChannelNameIsCached(t *testing.T) {
	srv, _, infos := newFakeSlack(t)
	svc, err := slack.New("xoxb-test", slack.WithAPIURL(srv.URL+"/"))
	gt.NoError(t, err).Required()

	for range 3 {
		name, err := svc.GetChannelName(context.Background(), "C123")
		gt.NoError(t, err).Required()
		gt.Value(t, name).Equal("risk-alerts")
	}
	gt.Value(t, infos.Load()).Equal(int32(1))
}

func TestBuildRiskAlert(t *testing.T) {
	p := &model.Project{Name: "Launch"}
	r := &model.Risk{
		Title:       "Data loss",
		Description: strings.Repeat("あ", 2000),
		Probability: 8,
		Impact:      9,
		Category:    types.CategorySecurity,
		Assignee:    "dba@example.com",
	}

	blocks, text := slack.BuildRiskAlert(p, r, "https://riskpilot.example.com/projects/1")
	gt.Array(t, blocks).Length(3)
	gt.String(t, text).Contains("Data loss")
	gt.String(t, text).Contains("Launch")
}

func TestIntegration(t *testing.T) {
	token := os.Getenv("TEST_SLACK_BOT_TOKEN")
	channelID := os.Getenv("TEST_SLACK_CHANNEL_ID")
	if token == "" || channelID == "" {
		t.Skip("TEST_SLACK_BOT_TOKEN or TEST_SLACK_CHANNEL_ID is not set")
	}

	ctx := context.Background()
	svc, err := slack.New(token)
	gt.NoError(t, err).Required()

	name, err := svc.GetChannelName(ctx, channelID)
	gt.NoError(t, err).Required()
	gt.String(t, name).NotEqual("")

	blocks, text := slack.BuildRiskAlert(
		&model.Project{Name: "Integration test"},
		&model.Risk{Title: "Test alert", Probability: 8, Impact: 8, Category: types.CategoryOther},
		"",
	)
	_, err = svc.PostMessage(ctx, channelID, blocks, text)
	gt.NoError(t, err)
}
