package shell

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shellmux/shellmux/internal/logging"
	"github.com/shellmux/shellmux/internal/session"
	"github.com/shellmux/shellmux/internal/shared/types"
	"github.com/shellmux/shellmux/internal/shell/risk"
)

// Stats counts command and confirmation outcomes. Nil disables counting.
type Stats interface {
	CommandFinished(status string)
	ConfirmationFinished(outcome string)
}

// Provider exposes shared shell sessions over the tool protocol.
type Provider struct {
	registry *session.Registry
	log      *logging.Logger
	stats    Stats
}

// NewProvider creates a shell provider backed by registry. stats may be nil.
func NewProvider(registry *session.Registry, log *logging.Logger, stats Stats) *Provider {
	return &Provider{
		registry: registry,
		log:      log,
		stats:    stats,
	}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "shell",
		Name:        "Shell Service",
		Description: "Human-supervised shell sessions: command execution with bounded inline waits and operator-gated output disclosure",
		Category:    types.CategoryShell,
		Capabilities: []string{
			"pty",
			"sessions",
			"risk-classification",
			"confirmation-gate",
			"multi-encoding",
		},
		Tools: p.getTools(),
	}
}

// Execute routes to appropriate operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "shell.run":
		return p.run(params)
	case "shell.append":
		return p.append(params)
	case "shell.get_output":
		return p.getOutput(ctx, params)
	case "shell.close":
		return p.close(params)
	case "shell.list":
		return p.list()
	default:
		return nil, fmt.Errorf("unknown tool: %s", toolID)
	}
}

func (p *Provider) getTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "shell.run",
			Name:        "Run Command",
			Description: "Create a shell session in a working directory and run a command. Returns output inline when the command finishes within the wait window, otherwise a pending session handle.",
			Parameters: []types.Parameter{
				{
					Name:        "command",
					Type:        "string",
					Description: "Command line to execute",
					Required:    true,
				},
				{
					Name:        "working_dir",
					Type:        "string",
					Description: "Absolute path of an existing directory to run in",
					Required:    true,
				},
			},
			Returns: "execution_result",
		},
		{
			ID:          "shell.append",
			Name:        "Append Command",
			Description: "Run another command in an existing session. Fails when a command is already outstanding.",
			Parameters: []types.Parameter{
				{
					Name:        "session_id",
					Type:        "string",
					Description: "Shell session ID",
					Required:    true,
				},
				{
					Name:        "command",
					Type:        "string",
					Description: "Command line to execute",
					Required:    true,
				},
			},
			Returns: "execution_result",
		},
		{
			ID:          "shell.get_output",
			Name:        "Get Output",
			Description: "Request disclosure of a session's unread output. Blocks on a human confirmation; declined or timed-out requests disclose nothing.",
			Parameters: []types.Parameter{
				{
					Name:        "session_id",
					Type:        "string",
					Description: "Shell session ID",
					Required:    true,
				},
			},
			Returns: "disclosure_result",
		},
		{
			ID:          "shell.close",
			Name:        "Close Session",
			Description: "Terminate a session's shell process. Closing an already-closed session succeeds.",
			Parameters: []types.Parameter{
				{
					Name:        "session_id",
					Type:        "string",
					Description: "Shell session ID",
					Required:    true,
				},
			},
			Returns: "close_result",
		},
		{
			ID:          "shell.list",
			Name:        "List Sessions",
			Description: "List all shell sessions with their lifecycle state",
			Parameters:  []types.Parameter{},
			Returns:     "session_list",
		},
	}
}

func (p *Provider) run(params map[string]interface{}) (*types.Result, error) {
	command, ok := params["command"].(string)
	if !ok || command == "" {
		return nil, fmt.Errorf("command is required")
	}
	workingDir, ok := params["working_dir"].(string)
	if !ok || workingDir == "" {
		return nil, fmt.Errorf("working_dir is required")
	}

	// Classify before creating anything: a blocked command must not cost a
	// session slot or touch a process.
	if cls := risk.Classify(command); cls.Verdict == risk.Blocked {
		return p.failure(fmt.Errorf("%w: %s", session.ErrCommandBlocked, cls.Reason)), nil
	}

	view, err := p.registry.Create(workingDir)
	if err != nil {
		return p.failure(err), nil
	}

	return p.execute(view.SessionID, command)
}

func (p *Provider) append(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok || sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	command, ok := params["command"].(string)
	if !ok || command == "" {
		return nil, fmt.Errorf("command is required")
	}

	return p.execute(sessionID, command)
}

func (p *Provider) execute(sessionID, command string) (*types.Result, error) {
	res, err := p.registry.Execute(sessionID, command)
	if err != nil {
		if p.stats != nil {
			p.stats.CommandFinished(session.ErrorCode(err))
		}
		return p.failure(err), nil
	}
	if p.stats != nil {
		p.stats.CommandFinished(string(res.Status))
	}

	data := map[string]interface{}{
		"session_id": res.SessionID,
		"status":     string(res.Status),
		"risk":       string(res.Risk),
	}
	if res.Status == session.StatusCompleted {
		data["output"] = res.Output
	}
	return &types.Result{Success: true, Data: data}, nil
}

func (p *Provider) getOutput(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok || sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := p.registry.RequestRead(sessionID)
	if err != nil {
		return p.failure(err), nil
	}
	if p.stats != nil {
		p.stats.ConfirmationFinished(string(res.Outcome))
	}

	data := map[string]interface{}{
		"disclosed":  res.Disclosed,
		"outcome":    string(res.Outcome),
		"request_id": res.RequestID,
	}
	if res.Disclosed {
		data["output"] = res.Output
	}
	return &types.Result{Success: true, Data: data}, nil
}

func (p *Provider) close(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok || sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	if err := p.registry.Close(sessionID); err != nil {
		return p.failure(err), nil
	}
	return &types.Result{
		Success: true,
		Data:    map[string]interface{}{"closed": true},
	}, nil
}

func (p *Provider) list() (*types.Result, error) {
	views := p.registry.List()

	sessions := make([]map[string]interface{}, 0, len(views))
	for _, v := range views {
		sessions = append(sessions, map[string]interface{}{
			"session_id":    v.SessionID,
			"state":         string(v.State),
			"working_dir":   v.WorkingDir,
			"created_at":    v.CreatedAt,
			"last_activity": v.LastActivity,
			"command_count": v.CommandCount,
		})
	}
	return &types.Result{
		Success: true,
		Data: map[string]interface{}{
			"sessions": sessions,
			"count":    len(sessions),
		},
	}, nil
}

// failure maps a session taxonomy error to a structured failure result so
// callers can branch on a stable code instead of parsing messages.
func (p *Provider) failure(err error) *types.Result {
	code := session.ErrorCode(err)
	msg := err.Error()
	p.log.Warn("shell tool failed",
		zap.String("code", code),
		zap.String("error", msg))
	return &types.Result{
		Success: false,
		Error:   &msg,
		Data:    map[string]interface{}{"code": code},
	}
}
