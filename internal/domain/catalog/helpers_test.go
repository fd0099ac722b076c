package catalog

import "github.com/felixgeelhaar/hostprep/internal/domain/host/transport"

func transportResult(code int, stderr string) transport.CommandResult {
	return transport.CommandResult{ExitCode: code, Stderr: []byte(stderr)}
}
