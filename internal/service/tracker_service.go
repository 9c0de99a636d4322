package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"tilp-connect/internal/access"
	"tilp-connect/internal/domain"
	"tilp-connect/internal/media"
	"tilp-connect/internal/repository"

	"go.uber.org/zap"
)

// MediaStore is the part of media.LocalStorage the tracker writes through.
type MediaStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	Remove(path string) error
}

var _ MediaStore = (*media.LocalStorage)(nil)

// TrackerService records progress entries.
type TrackerService struct {
	store  repository.Store
	media  MediaStore
	logger *zap.Logger
}

// NewTrackerService creates the tracker service. mediaStore may be nil, in
// which case attachments are never saved.
func NewTrackerService(store repository.Store, mediaStore MediaStore, logger *zap.Logger) *TrackerService {
	return &TrackerService{store: store, media: mediaStore, logger: logger}
}

func requireStaff(identity domain.Identity) error {
	if !access.IsStaff(identity.Role) {
		return fmt.Errorf("staff role required: %w", domain.ErrForbidden)
	}
	return nil
}

// TrackerOptions choices offered by the entry form.
type TrackerOptions struct {
	Children        []string `json:"children"`
	Disciplines     []string `json:"disciplines"`
	GoalAreas       []string `json:"goal_areas"`
	Statuses        []string `json:"statuses"`
	MediaExtensions []string `json:"media_extensions"`
}

// Options loads the form choices from the store.
func (s *TrackerService) Options(ctx context.Context, identity domain.Identity) (*TrackerOptions, error) {
	if err := requireStaff(identity); err != nil {
		return nil, err
	}
	children, err := s.store.ListChildren(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	disciplines, err := s.store.ListItems(ctx, domain.ListDisciplines)
	if err != nil {
		return nil, fmt.Errorf("failed to list disciplines: %w", err)
	}
	goalAreas, err := s.store.ListItems(ctx, domain.ListGoalAreas)
	if err != nil {
		return nil, fmt.Errorf("failed to list goal areas: %w", err)
	}

	opts := &TrackerOptions{
		Children:        make([]string, 0, len(children)),
		Disciplines:     append([]string{}, disciplines...),
		GoalAreas:       append([]string{}, goalAreas...),
		Statuses:        make([]string, 0, len(domain.Statuses)),
		MediaExtensions: media.AllowedExtensions,
	}
	for _, c := range children {
		opts.Children = append(opts.Children, c.ChildName)
	}
	for _, st := range domain.Statuses {
		opts.Statuses = append(opts.Statuses, string(st))
	}
	return opts, nil
}

// MediaUpload optional attachment of an entry.
type MediaUpload struct {
	Filename string
	Reader   io.Reader
}

// RecordProgressRequest one observation from the entry form.
type RecordProgressRequest struct {
	Date       string       `json:"date"` // YYYY-MM-DD
	ChildName  string       `json:"child_name"`
	Discipline string       `json:"discipline"`
	GoalArea   string       `json:"goal_area"`
	Status     string       `json:"status"`
	Notes      string       `json:"notes"`
	Media      *MediaUpload `json:"-"`
}

// RecordProgressResponse stored entry plus the attachment outcome.
type RecordProgressResponse struct {
	Entry      EntryItem `json:"entry"`
	MediaSaved bool      `json:"media_saved"`
	MediaError string    `json:"media_error,omitempty"`
}

// RecordProgress validates and appends a progress entry. The attachment is
// written first; only a successful write puts its path on the row. A failed
// write still records the entry, with an empty media path.
func (s *TrackerService) RecordProgress(ctx context.Context, identity domain.Identity, req RecordProgressRequest) (*RecordProgressResponse, error) {
	if err := requireStaff(identity); err != nil {
		return nil, err
	}
	entry, err := s.validate(ctx, req)
	if err != nil {
		s.logger.Warn("Rejected progress entry",
			zap.String("username", identity.Username),
			zap.String("child_name", req.ChildName),
			zap.Error(err),
		)
		return nil, err
	}

	resp := &RecordProgressResponse{}
	switch {
	case req.Media == nil || req.Media.Reader == nil:
	case s.media == nil:
		resp.MediaError = "media storage is disabled"
	default:
		path, err := s.media.Save(ctx, req.Media.Filename, req.Media.Reader)
		if err != nil {
			s.logger.Warn("Media save failed, recording entry without attachment",
				zap.String("child_name", entry.ChildName),
				zap.String("filename", req.Media.Filename),
				zap.Error(err),
			)
			resp.MediaError = err.Error()
		} else {
			entry.MediaPath = path
			resp.MediaSaved = true
		}
	}

	if err := s.store.AppendProgressEntry(ctx, entry); err != nil {
		s.logger.Error("Failed to append progress entry", zap.String("child_name", entry.ChildName), zap.Error(err))
		if entry.MediaPath != "" {
			if rmErr := s.media.Remove(entry.MediaPath); rmErr != nil {
				s.logger.Warn("Failed to remove orphaned media", zap.String("media_path", entry.MediaPath), zap.Error(rmErr))
			}
		}
		return nil, fmt.Errorf("failed to record progress: %w", err)
	}

	s.logger.Info("Progress recorded",
		zap.String("username", identity.Username),
		zap.String("child_name", entry.ChildName),
		zap.String("goal_area", entry.GoalArea),
		zap.String("status", string(entry.Status)),
		zap.Bool("media_saved", resp.MediaSaved),
	)
	resp.Entry = toEntryItem(entry)
	return resp, nil
}

func (s *TrackerService) validate(ctx context.Context, req RecordProgressRequest) (*domain.ProgressEntry, error) {
	date, err := time.Parse(domain.DateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", req.Date, domain.ErrInvalidArgument)
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetChild(ctx, req.ChildName); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("unknown child %q: %w", req.ChildName, domain.ErrInvalidArgument)
		}
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if err := s.requireListItem(ctx, domain.ListDisciplines, req.Discipline); err != nil {
		return nil, err
	}
	if err := s.requireListItem(ctx, domain.ListGoalAreas, req.GoalArea); err != nil {
		return nil, err
	}
	return &domain.ProgressEntry{
		Date:       date,
		ChildName:  req.ChildName,
		Discipline: req.Discipline,
		GoalArea:   req.GoalArea,
		Status:     status,
		Notes:      req.Notes,
	}, nil
}

func (s *TrackerService) requireListItem(ctx context.Context, list domain.LookupList, name string) error {
	names, err := s.store.ListItems(ctx, list)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", list, err)
	}
	for _, n := range names {
		if n == name {
			return nil
		}
	}
	return fmt.Errorf("unknown %s item %q: %w", list, name, domain.ErrInvalidArgument)
}
