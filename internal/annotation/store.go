package annotation

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/guyo13/osdlabel-sub000/internal/geometry"
)

// EventType identifies store change events.
type EventType int

const (
	EventAdded EventType = iota
	EventUpdated
	EventDeleted
	EventReloaded
)

// EventListener is called after a store mutation with the affected
// annotation. EventReloaded carries a zero Annotation.
type EventListener func(event EventType, ann Annotation)

// Store keeps committed annotations keyed by image id, then annotation id.
// All mutations funnel through the named actions below so listeners observe
// every change.
type Store struct {
	mu        sync.RWMutex
	byImage   map[string]map[string]Annotation
	listeners []EventListener
	now       func() time.Time
}

// NewStore creates an empty annotation store.
func NewStore() *Store {
	return &Store{
		byImage: make(map[string]map[string]Annotation),
		now:     time.Now,
	}
}

// On registers a listener notified after each mutation.
func (s *Store) On(fn EventListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) emit(event EventType, ann Annotation) {
	s.mu.RLock()
	listeners := s.listeners
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(event, ann)
	}
}

// Add commits a new annotation. A missing id is assigned; timestamps are
// stamped here so callers never fabricate them.
func (s *Store) Add(ann Annotation) (Annotation, error) {
	if ann.ImageID == "" {
		return Annotation{}, fmt.Errorf("add annotation: missing image id")
	}
	if err := ann.Geometry.Validate(); err != nil {
		return Annotation{}, fmt.Errorf("add annotation: %w", err)
	}
	if ann.ID == "" {
		ann.ID = uuid.NewString()
	}
	ts := s.now()
	ann.CreatedAt = ts
	ann.UpdatedAt = ts

	s.mu.Lock()
	imgs, ok := s.byImage[ann.ImageID]
	if !ok {
		imgs = make(map[string]Annotation)
		s.byImage[ann.ImageID] = imgs
	}
	if _, exists := imgs[ann.ID]; exists {
		s.mu.Unlock()
		return Annotation{}, fmt.Errorf("add annotation: duplicate id %s on image %s", ann.ID, ann.ImageID)
	}
	imgs[ann.ID] = ann
	s.mu.Unlock()

	s.emit(EventAdded, ann)
	return ann, nil
}

// Update replaces an existing annotation value. CreatedAt is preserved from
// the stored value; UpdatedAt is stamped.
func (s *Store) Update(ann Annotation) (Annotation, error) {
	if err := ann.Geometry.Validate(); err != nil {
		return Annotation{}, fmt.Errorf("update annotation: %w", err)
	}
	s.mu.Lock()
	imgs := s.byImage[ann.ImageID]
	prev, ok := imgs[ann.ID]
	if !ok {
		s.mu.Unlock()
		return Annotation{}, fmt.Errorf("update annotation: unknown id %s on image %s", ann.ID, ann.ImageID)
	}
	ann.CreatedAt = prev.CreatedAt
	ann.UpdatedAt = s.now()
	imgs[ann.ID] = ann
	s.mu.Unlock()

	s.emit(EventUpdated, ann)
	return ann, nil
}

// Delete removes an annotation. Deleting an unknown id is a no-op.
func (s *Store) Delete(imageID, id string) {
	s.mu.Lock()
	imgs := s.byImage[imageID]
	ann, ok := imgs[id]
	if ok {
		delete(imgs, id)
		if len(imgs) == 0 {
			delete(s.byImage, imageID)
		}
	}
	s.mu.Unlock()
	if ok {
		s.emit(EventDeleted, ann)
	}
}

// Get returns the annotation with the given id, if present.
func (s *Store) Get(imageID, id string) (Annotation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ann, ok := s.byImage[imageID][id]
	return ann, ok
}

// ForImage returns the annotations of one image sorted by creation time,
// oldest first.
func (s *Store) ForImage(imageID string) []Annotation {
	s.mu.RLock()
	imgs := s.byImage[imageID]
	out := make([]Annotation, 0, len(imgs))
	for _, ann := range imgs {
		out = append(out, ann)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// ImageIDs returns the ids of every image holding annotations, sorted.
func (s *Store) ImageIDs() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.byImage))
	for id := range s.byImage {
		out = append(out, id)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}

// All returns every annotation across all images.
func (s *Store) All() []Annotation {
	s.mu.RLock()
	var out []Annotation
	for _, imgs := range s.byImage {
		for _, ann := range imgs {
			out = append(out, ann)
		}
	}
	s.mu.RUnlock()
	return out
}

// Count returns how many annotations of one shape type exist under a
// context id, across all images.
func (s *Store) Count(contextID string, t geometry.ShapeType) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, imgs := range s.byImage {
		for _, ann := range imgs {
			if ann.ContextID == contextID && ann.Geometry.Type == t {
				n++
			}
		}
	}
	return n
}

// Reload replaces the entire store content in one step, as a bulk import
// does. Listeners receive a single EventReloaded.
func (s *Store) Reload(anns []Annotation) error {
	byImage := make(map[string]map[string]Annotation)
	for _, ann := range anns {
		if ann.ImageID == "" || ann.ID == "" {
			return fmt.Errorf("reload: annotation missing id or image id")
		}
		if err := ann.Geometry.Validate(); err != nil {
			return fmt.Errorf("reload: annotation %s: %w", ann.ID, err)
		}
		imgs, ok := byImage[ann.ImageID]
		if !ok {
			imgs = make(map[string]Annotation)
			byImage[ann.ImageID] = imgs
		}
		if _, dup := imgs[ann.ID]; dup {
			return fmt.Errorf("reload: duplicate id %s on image %s", ann.ID, ann.ImageID)
		}
		imgs[ann.ID] = ann
	}

	s.mu.Lock()
	s.byImage = byImage
	s.mu.Unlock()
	s.emit(EventReloaded, Annotation{})
	return nil
}
