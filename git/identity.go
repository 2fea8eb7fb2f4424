package git

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5/config"
)

// Identity returns the committer name and email, with repository settings
// taking precedence over global ones.
func (r *Runner) Identity(ctx context.Context) (name, email string, err error) {
	cfg, err := r.repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return "", "", fmt.Errorf("read git config: %w", err)
	}
	return cfg.User.Name, cfg.User.Email, nil
}

// SetIdentity writes the committer name and email to the repository
// config. Empty values leave the current setting untouched.
func (r *Runner) SetIdentity(ctx context.Context, name, email string) error {
	cfg, err := r.repo.Config()
	if err != nil {
		return fmt.Errorf("read git config: %w", err)
	}
	if name != "" {
		cfg.User.Name = name
	}
	if email != "" {
		cfg.User.Email = email
	}
	if err := r.repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("write git config: %w", err)
	}
	return nil
}
