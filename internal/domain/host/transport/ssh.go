package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/hostprep/internal/domain/host"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SSHTransport implements Transport using SSH.
type SSHTransport struct {
	// DefaultTimeout is used when the host sets no connect timeout.
	DefaultTimeout time.Duration
	// DefaultUser is used when the host sets no user.
	DefaultUser string
	// IdentityFiles are key files tried after the host's own key.
	IdentityFiles []string
	// KnownHostsFiles are consulted for host key verification.
	KnownHostsFiles []string
	// AgentSocket is the ssh-agent socket; empty disables agent auth.
	AgentSocket string
}

// NewSSHTransport creates a new SSH transport with defaults taken from the
// environment of the operator.
func NewSSHTransport() *SSHTransport {
	homeDir, _ := os.UserHomeDir()
	return &SSHTransport{
		DefaultTimeout: 30 * time.Second,
		DefaultUser:    os.Getenv("USER"),
		IdentityFiles: []string{
			filepath.Join(homeDir, ".ssh", "id_ed25519"),
			filepath.Join(homeDir, ".ssh", "id_rsa"),
		},
		KnownHostsFiles: []string{
			filepath.Join(homeDir, ".ssh", "known_hosts"),
		},
		AgentSocket: os.Getenv("SSH_AUTH_SOCK"),
	}
}

// Name returns "ssh".
func (t *SSHTransport) Name() string {
	return "ssh"
}

// Connect establishes an SSH connection to the host.
func (t *SSHTransport) Connect(ctx context.Context, h *host.Host) (Connection, error) {
	conn, err := t.connect(ctx, h)
	if err != nil {
		h.MarkError(err)
		return nil, err
	}
	h.MarkOnline()
	return conn, nil
}

func (t *SSHTransport) connect(ctx context.Context, h *host.Host) (*SSHConnection, error) {
	sshCfg := h.SSH()

	auth, agentConn, err := t.buildAuthMethods(sshCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build auth methods: %w", err)
	}

	hostKeyCallback, err := t.hostKeyCallback(sshCfg)
	if err != nil {
		closeQuietly(agentConn)
		return nil, err
	}

	timeout := sshCfg.ConnectTimeout
	if timeout == 0 {
		timeout = t.DefaultTimeout
	}

	user := sshCfg.User
	if user == "" {
		user = t.DefaultUser
	}

	config := &ssh.ClientConfig{
		User:            user,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}

	conn := &SSHConnection{host: h, agentConn: agentConn}
	if sshCfg.ProxyJump != "" {
		conn.proxy, conn.client, err = t.connectViaProxy(ctx, sshCfg.Address(), config, sshCfg.ProxyJump)
	} else {
		conn.client, err = t.dial(ctx, sshCfg.Address(), config)
	}
	if err != nil {
		closeQuietly(agentConn)
		return nil, err
	}

	return conn, nil
}

// Ping tests SSH connectivity by running a trivial command.
func (t *SSHTransport) Ping(ctx context.Context, h *host.Host) error {
	return ping(ctx, t, h)
}

func (t *SSHTransport) buildAuthMethods(cfg host.SSHConfig) ([]ssh.AuthMethod, net.Conn, error) {
	var methods []ssh.AuthMethod

	if cfg.IdentityFile != "" {
		signer, err := loadPrivateKey(cfg.IdentityFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load identity file %s: %w", cfg.IdentityFile, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	for _, path := range t.IdentityFiles {
		signer, err := loadPrivateKey(path)
		if err == nil {
			methods = append(methods, ssh.PublicKeys(signer))
		}
	}

	var agentConn net.Conn
	if t.AgentSocket != "" {
		conn, err := net.Dial("unix", t.AgentSocket)
		if err == nil {
			agentConn = conn
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}

	if len(methods) == 0 {
		return nil, nil, errors.New("no authentication methods available: pass --identity or start ssh-agent")
	}

	return methods, agentConn, nil
}

func (t *SSHTransport) hostKeyCallback(cfg host.SSHConfig) (ssh.HostKeyCallback, error) {
	if cfg.InsecureIgnoreHostKey {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // operator opted out explicitly
	}

	files := t.KnownHostsFiles
	if cfg.KnownHostsFile != "" {
		files = []string{expandHome(cfg.KnownHostsFile)}
	}

	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil, fmt.Errorf("no known_hosts file found (looked in %s); add the host key or pass --insecure-ignore-host-key",
			strings.Join(files, ", "))
	}

	callback, err := knownhosts.New(existing...)
	if err != nil {
		return nil, fmt.Errorf("failed to read known_hosts: %w", err)
	}
	return callback, nil
}

func loadPrivateKey(path string) (ssh.Signer, error) {
	key, err := os.ReadFile(expandHome(path))
	if err != nil {
		return nil, err
	}
	return ssh.ParsePrivateKey(key)
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

func (t *SSHTransport) dial(ctx context.Context, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	dialer := &net.Dialer{Timeout: config.Timeout}

	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, addr, config)
	if err != nil {
		_ = netConn.Close()
		return nil, fmt.Errorf("SSH handshake with %s failed: %w", addr, err)
	}

	return ssh.NewClient(sshConn, chans, reqs), nil
}

func (t *SSHTransport) connectViaProxy(ctx context.Context, addr string, config *ssh.ClientConfig, proxyJump string) (*ssh.Client, *ssh.Client, error) {
	proxyAddr := proxyJump
	if _, _, err := net.SplitHostPort(proxyAddr); err != nil {
		proxyAddr = net.JoinHostPort(proxyJump, "22")
	}

	proxyClient, err := t.dial(ctx, proxyAddr, config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to proxy %s: %w", proxyJump, err)
	}

	netConn, err := proxyClient.Dial("tcp", addr)
	if err != nil {
		_ = proxyClient.Close()
		return nil, nil, fmt.Errorf("failed to dial %s through proxy: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, addr, config)
	if err != nil {
		_ = netConn.Close()
		_ = proxyClient.Close()
		return nil, nil, fmt.Errorf("SSH handshake via proxy failed: %w", err)
	}

	return proxyClient, ssh.NewClient(sshConn, chans, reqs), nil
}

// SSHConnection implements Connection using SSH.
type SSHConnection struct {
	host      *host.Host
	client    *ssh.Client
	proxy     *ssh.Client
	agentConn net.Conn
}

// Host returns the connected host.
func (c *SSHConnection) Host() *host.Host {
	return c.host
}

// Run executes a command on the remote host.
func (c *SSHConnection) Run(ctx context.Context, cmd string) (*CommandResult, error) {
	return c.RunWithInput(ctx, cmd, nil)
}

// RunWithInput executes a command with stdin.
func (c *SSHConnection) RunWithInput(ctx context.Context, cmd string, stdin io.Reader) (*CommandResult, error) {
	session, err := c.client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	defer func() { _ = session.Close() }()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr
	if stdin != nil {
		session.Stdin = stdin
	}

	done := make(chan error, 1)
	start := time.Now()

	go func() {
		done <- session.Run(cmd)
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGTERM)
		return nil, ctx.Err()
	case err := <-done:
		result := &CommandResult{
			Stdout:   stdout.Bytes(),
			Stderr:   stderr.Bytes(),
			Duration: time.Since(start),
		}

		if err != nil {
			var exitErr *ssh.ExitError
			if !errors.As(err, &exitErr) {
				return nil, err
			}
			result.ExitCode = exitErr.ExitStatus()
		}

		return result, nil
	}
}

// Close closes the SSH connection and any proxy or agent connection.
func (c *SSHConnection) Close() error {
	err := c.client.Close()
	if c.proxy != nil {
		_ = c.proxy.Close()
	}
	closeQuietly(c.agentConn)
	return err
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
