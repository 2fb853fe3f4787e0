// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"github.com/AccelByte/extend-doorbell/pkg/alert"
	"github.com/AccelByte/extend-doorbell/pkg/host"
	"github.com/AccelByte/extend-doorbell/pkg/presence"
	"github.com/AccelByte/extend-doorbell/pkg/settings"
	"github.com/sirupsen/logrus"
)

// InitDispatcher creates one alert per presence event kind and wires them
// behind the silence gate.
//
// ============================================================
// DEVELOPER: Alert slots
// ============================================================
// Each presence event kind (entered, left, already here) owns
// exactly one alert with its own chat template and sound. The
// sound handle is opened lazily on first use and released when
// the slot's sound settings change or on shutdown.
//
// To plug in a different sound backend, pass another
// alert.Opener implementation. A nil opener disables sound
// while keeping chat alerts working.
// ============================================================
func InitDispatcher(
	s *settings.Settings,
	gate alert.Gate,
	chat host.ChatSink,
	opener alert.Opener,
	assetsDir string,
) *alert.Dispatcher {
	newAlert := func(kind presence.Kind) *alert.Alert {
		cfg := s.ForKind(kind)
		logrus.Infof("alert %s: chat=%v sound=%v", kind, cfg.ChatEnabled, cfg.SoundEnabled)
		return alert.New(kind.String(), cfg, chat, opener, assetsDir)
	}

	return alert.NewDispatcher(
		gate,
		newAlert(presence.Entered),
		newAlert(presence.Left),
		newAlert(presence.AlreadyHere),
	)
}
