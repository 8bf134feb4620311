package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("landing_page",
		mcp.WithPromptDescription("Guide through building a landing page from templates"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("What the landing page is about"),
			mcp.RequiredArgument(),
		),
	), s.handleLandingPagePrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("extract_component",
		mcp.WithPromptDescription("Turn a repeated section of the open page into a reusable component"),
		mcp.WithArgument("blockId",
			mcp.ArgumentDescription("ID of the block to extract"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("name",
			mcp.ArgumentDescription("Name for the new component"),
			mcp.RequiredArgument(),
		),
	), s.handleExtractComponentPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("responsive_review",
		mcp.WithPromptDescription("Review the open page at each breakpoint and fix layout styles"),
	), s.handleResponsiveReviewPrompt)
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.TextContent{Type: "text", Text: text},
			},
		},
	}
}

func (s *Server) handleLandingPagePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	return userPrompt(fmt.Sprintf("Build a landing page for: %s", topic), fmt.Sprintf(`Build a landing page about "%s" on the open page. Follow these steps:

1. Call list_templates to see the available block kinds
2. Call get_page_data to find the root block id
3. Use insert_block with kind "container" for a hero section, then insert a heading and a text block inside it
4. Add a second container for features with three text blocks
5. Use insert_image for a hero image, giving a descriptive alt text
6. Call save_page with the label "landing page"

Keep every block inside the root. Do not push a second body block.`, topic)), nil
}

func (s *Server) handleExtractComponentPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	blockID := req.Params.Arguments["blockId"]
	name := req.Params.Arguments["name"]
	return userPrompt(fmt.Sprintf("Extract %s into component %q", blockID, name), fmt.Sprintf(`Turn block %s into a reusable component named "%s":

1. Call find_block to confirm the block and its children
2. Call create_component with blockId %s and name "%s"
3. Call insert_component with the new component id where another copy is needed
4. Use remove_block on the original only if the user wants it replaced by an instance (this asks for approval)
5. Call save_page`, blockID, name, blockID, name)), nil
}

func (s *Server) handleResponsiveReviewPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return userPrompt("Review the open page at each breakpoint", `Review the open page for each device class:

1. Call get_page_data and inspect the styles of each block. Styles are keyed by breakpoint: desktop, tablet and mobile
2. For each of set_breakpoint desktop, tablet and mobile, check that widths and paddings make sense for the device
3. Where a block needs different values on smaller screens, push a corrected copy of the tree with push_blocks, keeping every blockId
4. Call save_page with the label "responsive review"`), nil
}
