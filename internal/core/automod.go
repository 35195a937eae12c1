package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/SchoolHTMLDeveloper/chatfix/internal/store"
)

// WordFilter scans outgoing text against the banned-word list. The list is
// ordered; Scan returns the first match in list order.
type WordFilter struct {
	store store.WordStore
	words []string
}

// NewWordFilter builds the filter, loading the persisted list if a store is
// provided.
func NewWordFilter(ctx context.Context, st store.WordStore) (*WordFilter, error) {
	f := &WordFilter{store: st}
	if st == nil {
		return f, nil
	}

	words, err := st.ListWords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load banned words: %w", err)
	}
	f.words = words
	return f, nil
}

// Scan does a case-insensitive substring search of every banned word against
// text. The first match in list order wins.
func (f *WordFilter) Scan(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, word := range f.words {
		if word == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(word)) {
			return word, true
		}
	}
	return "", false
}

// Add appends word to the list, persisting the new list before adopting it.
// Duplicates are not checked.
func (f *WordFilter) Add(ctx context.Context, word string) error {
	next := append(append([]string(nil), f.words...), word)
	if err := f.persist(ctx, next); err != nil {
		return err
	}
	f.words = next
	return nil
}

// Remove deletes every exact match of word from the list, persisting the new
// list before adopting it.
func (f *WordFilter) Remove(ctx context.Context, word string) error {
	next := make([]string, 0, len(f.words))
	for _, w := range f.words {
		if w != word {
			next = append(next, w)
		}
	}
	if err := f.persist(ctx, next); err != nil {
		return err
	}
	f.words = next
	return nil
}

// Words returns a copy of the current list in order.
func (f *WordFilter) Words() []string {
	out := make([]string, len(f.words))
	copy(out, f.words)
	return out
}

func (f *WordFilter) persist(ctx context.Context, words []string) error {
	if f.store == nil {
		return nil
	}
	if err := f.store.ReplaceWords(ctx, words); err != nil {
		return fmt.Errorf("persist banned words: %w", err)
	}
	return nil
}
