package registry

import (
	"log/slog"
	"time"

	"github.com/funilhq/funil/pkg/nodes/condition"
	"github.com/funilhq/funil/pkg/nodes/createtask"
	"github.com/funilhq/funil/pkg/nodes/delay"
	"github.com/funilhq/funil/pkg/nodes/fetchdata"
	"github.com/funilhq/funil/pkg/nodes/loop"
	"github.com/funilhq/funil/pkg/nodes/notification"
	"github.com/funilhq/funil/pkg/nodes/sendemail"
	"github.com/funilhq/funil/pkg/nodes/trigger"
	"github.com/funilhq/funil/pkg/nodes/updatestatus"
	"github.com/funilhq/funil/pkg/protocol"
	"github.com/funilhq/funil/pkg/storage"
)

// Deps carries the collaborators the built-in node factories need.
type Deps struct {
	Logger     *slog.Logger
	Store      storage.RecordStore
	Email      protocol.EmailSender
	Notifier   protocol.Notifier
	MaxDelay   time.Duration
	FetchLimit int
}

// NewDefaultRegistry registers every built-in node type.
func NewDefaultRegistry(deps Deps) *Registry {
	r := NewRegistry(deps.Logger)

	r.Register(trigger.NewFactory())
	r.Register(condition.NewFactory())
	r.Register(delay.NewFactory(deps.MaxDelay))
	r.Register(loop.NewFactory())
	r.Register(sendemail.NewFactory(deps.Email))
	r.Register(notification.NewFactory(deps.Notifier))
	r.Register(createtask.NewFactory(deps.Store))
	r.Register(fetchdata.NewFactory(deps.Store, deps.FetchLimit))
	r.Register(updatestatus.NewFactory(deps.Store))

	return r
}
