package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunShutdownHooks_LastRegisteredRunsFirst(t *testing.T) {
	var order []string
	hook := func(name string) func(ctx context.Context) error {
		return func(ctx context.Context) error {
			order = append(order, name)
			return nil
		}
	}

	// 按资源创建顺序注册：先被创建的资源最后被清理，
	// 持有依赖的一方（consumer）在它依赖的资源之前停止
	runShutdownHooks(context.Background(), []func(ctx context.Context) error{
		hook("lock provider"),
		hook("result writer"),
		hook("dlt writer"),
		hook("consumer"),
	})

	assert.Equal(t, []string{"consumer", "dlt writer", "result writer", "lock provider"}, order)
}

func TestRunShutdownHooks_FailedHookDoesNotStopOthers(t *testing.T) {
	var order []string
	runShutdownHooks(context.Background(), []func(ctx context.Context) error{
		func(ctx context.Context) error { order = append(order, "first"); return nil },
		func(ctx context.Context) error { return errors.New("boom") },
		func(ctx context.Context) error { order = append(order, "last"); return nil },
	})

	assert.Equal(t, []string{"last", "first"}, order)
}
