package sshkeys

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

const (
	agentSocketEnvironmentConstant = "SSH_AUTH_SOCK"
	agentSocketNetworkConstant     = "unix"
	agentConnectErrorTemplate      = "connect to ssh-agent: %w"
	agentReadKeyErrorTemplate      = "read private key %s: %w"
	agentParseKeyErrorTemplate     = "parse private key %s: %w"
	agentAddKeyErrorTemplate       = "add key to ssh-agent: %w"
)

// AgentConnector registers private keys with an SSH agent.
type AgentConnector interface {
	AddKey(privateKeyPath string, comment string) (bool, error)
}

// SocketAgentConnector talks to the agent listening on SSH_AUTH_SOCK.
type SocketAgentConnector struct {
	lookupEnvironment func(string) (string, bool)
}

// NewSocketAgentConnector constructs a connector that resolves the agent socket through lookupEnvironment.
func NewSocketAgentConnector(lookupEnvironment func(string) (string, bool)) *SocketAgentConnector {
	if lookupEnvironment == nil {
		lookupEnvironment = os.LookupEnv
	}
	return &SocketAgentConnector{lookupEnvironment: lookupEnvironment}
}

// AddKey loads the unencrypted private key and adds it to the agent. It returns false without error when
// SSH_AUTH_SOCK is unset.
func (connector *SocketAgentConnector) AddKey(privateKeyPath string, comment string) (bool, error) {
	socketPath, socketConfigured := connector.lookupEnvironment(agentSocketEnvironmentConstant)
	if !socketConfigured || len(socketPath) == 0 {
		return false, nil
	}

	privateKeyContents, readError := os.ReadFile(privateKeyPath)
	if readError != nil {
		return false, fmt.Errorf(agentReadKeyErrorTemplate, privateKeyPath, readError)
	}
	privateKey, parseError := ssh.ParseRawPrivateKey(privateKeyContents)
	if parseError != nil {
		return false, fmt.Errorf(agentParseKeyErrorTemplate, privateKeyPath, parseError)
	}

	connection, dialError := net.Dial(agentSocketNetworkConstant, socketPath)
	if dialError != nil {
		return false, fmt.Errorf(agentConnectErrorTemplate, dialError)
	}
	defer connection.Close()

	if addError := agent.NewClient(connection).Add(agent.AddedKey{PrivateKey: privateKey, Comment: comment}); addError != nil {
		return false, fmt.Errorf(agentAddKeyErrorTemplate, addError)
	}
	return true, nil
}
