package services

import (
	"fmt"
	"net"
	"strconv"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

// FindAvailablePort returns the first port in [start, end] that the MCP
// HTTP server could bind on all interfaces.
func FindAvailablePort(start, end int) (int, error) {
	if start <= 0 || end > 65535 || start > end {
		return 0, fmt.Errorf("%w: invalid port range %d-%d", domain.ErrInvalidInput, start, end)
	}
	for port := start; port <= end; port++ {
		l, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(port)))
		if err != nil {
			continue
		}
		_ = l.Close()
		return port, nil
	}
	return 0, fmt.Errorf("%w: no available port in range %d-%d", domain.ErrConfiguration, start, end)
}
