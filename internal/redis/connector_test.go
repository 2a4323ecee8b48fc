package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Snehagupta1907/monad-journal/internal/logger"
)

type flakyPinger struct {
	failures int
	calls    int
}

func (f *flakyPinger) Ping(ctx context.Context) *redis.StatusCmd {
	f.calls++
	cmd := redis.NewStatusCmd(ctx)
	if f.calls <= f.failures {
		cmd.SetErr(errors.New("connection refused"))
		return cmd
	}
	cmd.SetVal("PONG")
	return cmd
}

func (f *flakyPinger) Close() error { return nil }

func testOptions() ConnectOptions {
	return ConnectOptions{
		Addr:           "localhost:6379",
		ConnectTimeout: 200 * time.Millisecond,
		RetryInterval:  time.Millisecond,
		MaxWait:        5 * time.Millisecond,
		PingTimeout:    10 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestConnectWithRetryRecovers(t *testing.T) {
	p := &flakyPinger{failures: 3}
	if err := connectWithRetry(context.Background(), p, testOptions(), logger.New("error", false)); err != nil {
		t.Fatalf("connectWithRetry() error = %v", err)
	}
	if p.calls != 4 {
		t.Errorf("calls = %d, want 4", p.calls)
	}
}

func TestConnectWithRetryTimesOut(t *testing.T) {
	p := &flakyPinger{failures: 1 << 30}
	opts := testOptions()
	opts.ConnectTimeout = 20 * time.Millisecond

	if err := connectWithRetry(context.Background(), p, opts, logger.New("error", false)); err == nil {
		t.Fatal("connectWithRetry() should fail when redis never answers")
	}
}

func TestConnectOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ConnectOptions)
		wantErr bool
	}{
		{name: "valid", mutate: func(*ConnectOptions) {}},
		{name: "empty addr", mutate: func(o *ConnectOptions) { o.Addr = "" }, wantErr: true},
		{name: "zero connect timeout", mutate: func(o *ConnectOptions) { o.ConnectTimeout = 0 }, wantErr: true},
		{name: "zero retry interval", mutate: func(o *ConnectOptions) { o.RetryInterval = 0 }, wantErr: true},
		{name: "zero max wait", mutate: func(o *ConnectOptions) { o.MaxWait = 0 }, wantErr: true},
		{name: "zero ping timeout", mutate: func(o *ConnectOptions) { o.PingTimeout = 0 }, wantErr: true},
		{name: "negative warn threshold", mutate: func(o *ConnectOptions) { o.WarnThreshold = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			tt.mutate(&opts)
			if err := opts.validate(); (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
