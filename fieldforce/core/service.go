package core

import (
	"time"

	"fieldforce.com/fieldforce/utils"
)

type Dependencies struct {
	Stores    Stores
	Positions PositionProvider
	Assistant Assistant
	Blobs     BlobStore
	Logger    Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	stores    Stores
	positions PositionProvider
	assistant Assistant
	blobs     BlobStore
	opts      Options
	logger    Logger
	now       func() time.Time
}

func NewService(deps Dependencies, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = utils.DhakaTZ
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	assistant := deps.Assistant
	if assistant == nil {
		assistant = StaticAssistant{}
	}
	return &Service{
		stores:    deps.Stores,
		positions: deps.Positions,
		assistant: assistant,
		blobs:     deps.Blobs,
		opts:      opts,
		logger:    defaultLogger(deps.Logger),
		now:       now,
	}
}

func (s *Service) Options() Options {
	return s.opts
}

// Today is the local calendar date.
func (s *Service) Today() string {
	return utils.LocalDate(s.now(), s.opts.Location)
}
