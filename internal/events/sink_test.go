// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package events

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func TestEventValues(t *testing.T) {
	id := uuid.New()
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	e := Event{
		Action:     "move",
		CategoryID: id,
		ActorID:    "mod-1",
		Details:    `moved "Phones" under Accessories`,
		Timestamp:  ts,
	}

	v := e.Values()
	if v["action"] != "move" || v["category_id"] != id.String() || v["actor_id"] != "mod-1" {
		t.Errorf("values = %v", v)
	}
	if v["timestamp"] != "2026-03-14T09:26:53Z" {
		t.Errorf("timestamp = %v, want RFC3339", v["timestamp"])
	}
}

func TestValkeySinkPublish(t *testing.T) {
	host := os.Getenv("VALKEY_HOST")
	if host == "" {
		host = "localhost"
	}
	client := redis.NewClient(&redis.Options{Addr: host + ":6379", DB: 15})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}
	const stream = "category-events-test"
	t.Cleanup(func() {
		client.Del(ctx, stream)
		client.Close()
	})

	sink := NewValkeySink(client, stream)
	e := Event{Action: "create", CategoryID: uuid.New(), ActorID: "t", Timestamp: time.Now()}
	sink.Publish(ctx, e)

	msgs, err := client.XRange(ctx, stream, "-", "+").Result()
	if err != nil {
		t.Fatalf("XRange: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("stream entries = %d, want 1", len(msgs))
	}
	if msgs[0].Values["action"] != "create" {
		t.Errorf("entry action = %v, want create", msgs[0].Values["action"])
	}
}
