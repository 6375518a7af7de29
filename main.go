/*
main.go

Copyright © 2025 Code Monkey Cybersecurity
Contact: git@cybermonkey.net.au

This file is part of Nyx.

This software is dual-licensed under the Do No Harm License
and the GNU Affero General Public License v3 (AGPL-3.0-or-later).
You may use, modify, and distribute it under the terms of either license.

See LICENSE.agpl and LICENSE.dnh for full details.
*/
package main

import (
	"context"
	"os"
	"time"

	"github.com/CodeMonkeyCybersecurity/nyx/cmd"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/telemetry"
	"go.uber.org/zap"
)

func main() {
	logger.InitializeWithFallback()
	log := logger.GetLogger()
	execute.DefaultLogger = log

	if err := telemetry.Init(shared.NyxID); err != nil {
		log.Warn("Telemetry disabled", zap.Error(err))
	}

	code := cmd.Execute()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := telemetry.Shutdown(ctx); err != nil {
		log.Debug("Telemetry shutdown failed", zap.Error(err))
	}
	cancel()
	os.Exit(code)
}
