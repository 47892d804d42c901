package live

import (
	"github.com/mcdev12/liveworkshop/go/internal/models"
)

// BuildSlides lays out the deck: intro slides, one slide per session in
// session order, then outro slides. Sessions must already be ordered.
func BuildSlides(workshop *models.Workshop, sessions []models.Session) []models.Slide {
	slides := make([]models.Slide, 0, len(workshop.IntroSlides)+len(sessions)+len(workshop.OutroSlides))

	for _, c := range workshop.IntroSlides {
		slides = append(slides, models.Slide{
			Index: len(slides),
			Kind:  models.SlideKindIntro,
			Title: c.Title,
			Body:  c.Body,
		})
	}

	for i := range sessions {
		id := sessions[i].ID
		slides = append(slides, models.Slide{
			Index:     len(slides),
			Kind:      models.SlideKindSession,
			Title:     sessions[i].Title,
			SessionID: &id,
		})
	}

	for _, c := range workshop.OutroSlides {
		slides = append(slides, models.Slide{
			Index: len(slides),
			Kind:  models.SlideKindOutro,
			Title: c.Title,
			Body:  c.Body,
		})
	}

	return slides
}
