package authclient

import (
	"context"
	"fmt"

	"github.com/iyes-games/mpauth/pkg/discovery"
)

// Discover looks up an Auth server advertising serverName on the local
// network and returns its address.
func Discover(ctx context.Context, b discovery.Browser, serverName string) (string, error) {
	svc, err := b.FindByServerName(ctx, serverName)
	if err != nil {
		return "", err
	}
	addr := svc.Addr()
	if addr == "" {
		return "", fmt.Errorf("%w: %s has no address", discovery.ErrNotFound, svc.InstanceName)
	}
	return addr, nil
}
