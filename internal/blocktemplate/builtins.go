package blocktemplate

import "pagebuilder/internal/domain"

const placeholderImage = "/assets/builder/images/placeholder.png"

var builtins = map[domain.BlockKind]TemplateFunc{
	domain.BlockKindBody: func() domain.BlockSpec {
		return domain.BlockSpec{
			Attributes: map[string]string{},
			Styles: domain.Styles{
				domain.BreakpointDesktop: {
					"display":         "flex",
					"flexWrap":        "wrap",
					"flexDirection":   "column",
					"alignItems":      "center",
					"width":           "100%",
					"justifyContent":  "flex-start",
					"minHeight":       "100vh",
					"position":        "relative",
					"overflowX":       "hidden",
					"backgroundColor": "#FFFFFF",
				},
			},
		}
	},
	domain.BlockKindContainer: func() domain.BlockSpec {
		return domain.BlockSpec{
			Attributes: map[string]string{},
			Styles: domain.Styles{
				domain.BreakpointDesktop: {
					"display":       "flex",
					"flexDirection": "column",
					"flexShrink":    "0",
					"width":         "100%",
					"height":        "fit-content",
					"padding":       "10px",
				},
			},
		}
	},
	domain.BlockKindText: func() domain.BlockSpec {
		return domain.BlockSpec{
			Attributes: map[string]string{"text": "Text"},
			Styles: domain.Styles{
				domain.BreakpointDesktop: {
					"fontSize":   "30px",
					"width":      "fit-content",
					"height":     "fit-content",
					"lineHeight": "1",
					"minWidth":   "10px",
				},
			},
		}
	},
	domain.BlockKindImage: func() domain.BlockSpec {
		return domain.BlockSpec{
			Attributes: map[string]string{"src": placeholderImage},
			Styles: domain.Styles{
				domain.BreakpointDesktop: {
					"objectFit":  "cover",
					"flexShrink": "0",
					"width":      "100%",
					"height":     "auto",
				},
			},
		}
	},
	domain.BlockKindButton: func() domain.BlockSpec {
		return domain.BlockSpec{
			Attributes: map[string]string{"text": "Click Me"},
			Styles: domain.Styles{
				domain.BreakpointDesktop: {
					"display":         "flex",
					"alignItems":      "center",
					"justifyContent":  "center",
					"padding":         "10px 20px",
					"borderRadius":    "5px",
					"backgroundColor": "#171717",
					"color":           "#FFFFFF",
					"cursor":          "pointer",
				},
			},
		}
	},
	domain.BlockKindLink: func() domain.BlockSpec {
		return domain.BlockSpec{
			Attributes: map[string]string{"href": "#", "text": "Link"},
			Styles: domain.Styles{
				domain.BreakpointDesktop: {
					"color":          "#0070F3",
					"textDecoration": "underline",
					"width":          "fit-content",
				},
			},
		}
	},
	domain.BlockKindVideo: func() domain.BlockSpec {
		return domain.BlockSpec{
			Attributes: map[string]string{"autoplay": "true", "muted": "true", "loop": "true"},
			Styles: domain.Styles{
				domain.BreakpointDesktop: {
					"objectFit": "cover",
					"width":     "100%",
					"height":    "auto",
				},
			},
		}
	},
	domain.BlockKindHTML: func() domain.BlockSpec {
		return domain.BlockSpec{
			Attributes: map[string]string{"innerHTML": "<div>Custom HTML</div>"},
			Styles: domain.Styles{
				domain.BreakpointDesktop: {
					"width":  "100%",
					"height": "fit-content",
				},
			},
		}
	},
}
