package authsmith

import (
	"context"
	"testing"
)

func TestBuilderBuild(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	cfg := DefaultConfig()
	cfg.Password = testConfig().Password

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithAccountStore(newMockAccountStore()).
		WithNotifier(&mockNotifier{}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := engine.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Password: "password1",
	}); err != nil {
		t.Fatalf("Register on built engine failed: %v", err)
	}
}

func TestBuilderRequiresDependencies(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	if _, err := New().WithConfig(DefaultConfig()).Build(); err == nil {
		t.Fatal("expected error without redis")
	}

	if _, err := New().WithConfig(DefaultConfig()).WithRedis(rdb).Build(); err == nil {
		t.Fatal("expected error without account store")
	}

	// Verification on, no notifier.
	if _, err := New().
		WithConfig(DefaultConfig()).
		WithRedis(rdb).
		WithAccountStore(newMockAccountStore()).
		Build(); err == nil {
		t.Fatal("expected error without notifier while verification is required")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	builder := New().
		WithConfig(DefaultConfig()).
		WithRedis(rdb).
		WithAccountStore(newMockAccountStore()).
		WithNotifier(&mockNotifier{})

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := builder.Build(); err == nil {
		t.Fatal("expected error on second Build")
	}
}
