package metadata

import (
	"fmt"
	"strings"

	"github.com/Snehagupta1907/monad-journal/internal/domain"
)

const (
	// DefaultFallbackImage is used when the draft has no uploaded image.
	DefaultFallbackImage = "https://placekitten.com/400/400"

	// DescriptionLimit is the number of content characters kept in the description.
	DescriptionLimit = 100

	// Ellipsis is appended to every description, truncated or not.
	Ellipsis = "..."
)

// Assembler builds metadata documents from drafts. It does no I/O.
type Assembler struct {
	fallbackImage string
}

// NewAssembler returns an Assembler using fallbackImage when no image was uploaded.
// An empty fallbackImage selects DefaultFallbackImage.
func NewAssembler(fallbackImage string) *Assembler {
	if fallbackImage == "" {
		fallbackImage = DefaultFallbackImage
	}
	return &Assembler{fallbackImage: fallbackImage}
}

// Assemble is NewAssembler("").Assemble.
func Assemble(draft domain.DraftEntry, image domain.ContentAddress) (domain.Metadata, error) {
	return NewAssembler("").Assemble(draft, image)
}

// Validate checks the fields required before anything is uploaded.
func Validate(draft domain.DraftEntry) error {
	var missing []string
	if strings.TrimSpace(draft.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(draft.Content) == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// Assemble produces the metadata document for draft.
func (a *Assembler) Assemble(draft domain.DraftEntry, image domain.ContentAddress) (domain.Metadata, error) {
	if err := Validate(draft); err != nil {
		return domain.Metadata{}, err
	}

	img := string(image)
	if img == "" {
		img = a.fallbackImage
	}

	var external *string
	if u := strings.TrimSpace(draft.PortfolioURL); u != "" {
		external = &u
	}

	attrs := []domain.Attribute{
		{TraitType: domain.TraitDate, Value: draft.Date},
	}
	if draft.Todos != nil {
		attrs = append(attrs,
			domain.Attribute{TraitType: domain.TraitTodoCount, Value: draft.Todos.Total},
			domain.Attribute{TraitType: domain.TraitCompletedTodos, Value: draft.Todos.Completed},
		)
	}

	return domain.Metadata{
		Name:        draft.Title,
		Description: Describe(draft.Content),
		Image:       img,
		ExternalURL: external,
		Attributes:  attrs,
	}, nil
}

// Describe keeps the first DescriptionLimit characters of content and appends Ellipsis.
func Describe(content string) string {
	r := []rune(content)
	if len(r) > DescriptionLimit {
		r = r[:DescriptionLimit]
	}
	return string(r) + Ellipsis
}
