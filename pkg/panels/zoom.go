package panels

import (
	"context"

	"github.com/grovetools/mviewer/pkg/protocol"
	"github.com/grovetools/mviewer/pkg/store"
)

// ZoomControl turns zoom and pan buttons into commands. Every action enters
// the busy state before its command is sent.
type ZoomControl struct {
	sender Sender
	busy   store.Busy
}

func NewZoomControl(sender Sender, busy store.Busy) *ZoomControl {
	return &ZoomControl{sender: sender, busy: busy}
}

func (z *ZoomControl) ZoomIn(ctx context.Context) error    { return z.send(ctx, protocol.ZoomIn()) }
func (z *ZoomControl) ZoomOut(ctx context.Context) error   { return z.send(ctx, protocol.ZoomOut()) }
func (z *ZoomControl) ZoomReset(ctx context.Context) error { return z.send(ctx, protocol.ZoomReset()) }
func (z *ZoomControl) Center(ctx context.Context) error    { return z.send(ctx, protocol.Center()) }

// Pan moves the view one step in dir.
func (z *ZoomControl) Pan(ctx context.Context, dir protocol.PanDirection) error {
	return z.send(ctx, protocol.Pan(dir))
}

func (z *ZoomControl) send(ctx context.Context, cmd protocol.Command) error {
	z.busy.SetBusy(true)
	if err := z.sender.Send(ctx, cmd); err != nil {
		z.busy.SetBusy(false)
		return err
	}
	return nil
}
