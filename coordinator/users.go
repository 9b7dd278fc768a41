// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/danielhkuo/quick-points/domain"
)

// RegisterUser creates the minimal identity record that SubmitEstimate and
// CreateSession validate against. Anything beyond nickname + id is out of
// scope here.
func (c *Coordinator) RegisterUser(ctx context.Context, nickname string) (domain.User, error) {
	nickname = strings.TrimSpace(nickname)
	if len(nickname) < minNicknameLength || len(nickname) > maxNicknameLength {
		vErr := &domain.ValidationError{}
		vErr.Add("nickname", fmt.Sprintf("nickname must be %d-%d characters", minNicknameLength, maxNicknameLength))
		return domain.User{}, vErr
	}

	user := domain.User{
		ID:        c.idGen(),
		Nickname:  nickname,
		CreatedAt: c.now(),
	}
	if err := c.users.Save(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("failed to save user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID)
	return user, nil
}
