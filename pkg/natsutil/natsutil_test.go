package natsutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/wessley-listings/engine/vehicle"
)

func startTestNATS(t *testing.T) (*natsserver.Server, *nats.Conn) {
	t.Helper()
	srv, err := natsserver.NewServer(&natsserver.Options{Port: -1})
	if err != nil {
		t.Fatal(err)
	}
	srv.Start()
	if !srv.ReadyForConnections(3 * time.Second) {
		t.Fatal("nats not ready")
	}
	nc, err := Connect(srv.ClientURL(), "natsutil-test", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		nc.Close()
		srv.Shutdown()
	})
	return srv, nc
}

func TestHeaderCarrier(t *testing.T) {
	msg := &nats.Msg{}
	carrier := (*headerCarrier)(msg)

	if carrier.Get("missing") != "" || carrier.Keys() != nil {
		t.Fatal("nil header should read as empty")
	}
	carrier.Set("traceparent", "00-abc-def-01")
	carrier.Set("traceparent", "00-abc-def-02")
	if got := carrier.Get("traceparent"); got != "00-abc-def-02" {
		t.Fatalf("expected overwritten traceparent, got %q", got)
	}
	if keys := carrier.Keys(); len(keys) != 1 {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestPublishScrapeResult(t *testing.T) {
	_, nc := startTestNATS(t)

	ch := make(chan *nats.Msg, 1)
	sub, err := nc.ChanSubscribe("listings.scraped", ch)
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Unsubscribe()

	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	result := vehicle.Merge(ts, vehicle.NewScraped(vehicle.SourceIkman, "https://ikman.lk/en/ads", []vehicle.Vehicle{
		{Title: "Aqua", Price: vehicle.PriceAmount(3500000), Meta: vehicle.Meta{Source: vehicle.SourceIkman, SourceURL: "https://ikman.lk/en/ads", PageID: 1}},
	}, ts))
	if err := Publish(context.Background(), nc, "listings.scraped", result); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-ch:
		if msg.Header.Get("Content-Type") != ContentType {
			t.Fatalf("unexpected content type %q", msg.Header.Get("Content-Type"))
		}
		var got vehicle.ScrapeResult
		if err := json.Unmarshal(msg.Data, &got); err != nil {
			t.Fatal(err)
		}
		if got.Count != 1 || got.Results[0].Title != "Aqua" {
			t.Fatalf("unexpected payload: %+v", got)
		}
		if n, ok := got.Results[0].Price.Amount(); !ok || n != 3500000 {
			t.Fatalf("price lost in transit: %v", got.Results[0].Price)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishMarshalError(t *testing.T) {
	_, nc := startTestNATS(t)
	if err := Publish(context.Background(), nc, "test.err", make(chan int)); err == nil {
		t.Fatal("expected marshal error")
	}
}

func TestConnectFails(t *testing.T) {
	if _, err := Connect("nats://127.0.0.1:1", "x", 100*time.Millisecond); err == nil {
		t.Fatal("expected connect error")
	}
}
