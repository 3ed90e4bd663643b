package ipc

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"
)

const dialTimeout = 2 * time.Second

// Send delivers one command to the server on socketPath and returns its reply.
// A reply of the form "error: ..." is returned as an error.
func Send(socketPath, message string) (string, error) {
	if socketPath == "" {
		return "", ErrNoSocket
	}

	conn, err := net.DialTimeout("unix", socketPath, dialTimeout)
	if err != nil {
		return "", fmt.Errorf("failed to connect to locus socket: %w", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(readTimeout))

	if _, err := fmt.Fprintln(conn, strings.TrimSpace(message)); err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && reply == "" {
		return "", fmt.Errorf("failed to read reply: %w", err)
	}
	reply = strings.TrimSpace(reply)

	if rest, ok := strings.CutPrefix(reply, "error: "); ok {
		return reply, fmt.Errorf("locus: %s", rest)
	}
	return reply, nil
}
