package core

import (
	"sync"

	"go.uber.org/zap"

	"github.com/difylang/dbagent/internal/models"
)

// DialogState is the lifecycle of a one-shot confirmation dialog.
type DialogState int

const (
	DialogClosed DialogState = iota
	DialogOpen
	DialogConfirming
)

type categoryText struct {
	title       string
	description string
}

func categoryDefaults(category models.ConfirmationCategory) categoryText {
	switch category {
	case models.CategoryAdd:
		return categoryText{"确认新增", "请确认以下新增信息"}
	case models.CategoryDelete:
		return categoryText{"确认删除", "此操作不可撤销，请仔细确认"}
	case models.CategoryComposite:
		return categoryText{"确认复合操作", "请确认以下批量操作"}
	default:
		return categoryText{"确认修改", "请确认以下修改信息"}
	}
}

// ShowOptions captures one confirmation request for the dialog.
type ShowOptions struct {
	Category    models.ConfirmationCategory
	Title       string // defaults per category when empty
	Description string // defaults per category when empty
	Content     string
	Dangerous   bool // delete is dangerous regardless
	OnConfirm   func() error
	OnCancel    func() // optional
}

// ConfirmController is a general-purpose one-shot dialog state machine, usable
// outside the inline chat flow (demo and testing surfaces that want an
// explicit modal). At most one request is held; showing a new one while open
// replaces the current request.
type ConfirmController struct {
	mu        sync.Mutex
	state     DialogState
	request   *models.ConfirmationRequest
	onConfirm func() error
	onCancel  func()
	logger    *zap.Logger
}

func NewConfirmController(logger *zap.Logger) *ConfirmController {
	return &ConfirmController{logger: logger}
}

// Show opens the dialog with the given request, overwriting any request
// already open. Dangerous is derived from the explicit flag or the delete
// category.
func (c *ConfirmController) Show(opts ShowOptions) {
	defaults := categoryDefaults(opts.Category)
	title := opts.Title
	if title == "" {
		title = defaults.title
	}
	description := opts.Description
	if description == "" {
		description = defaults.description
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = DialogOpen
	c.request = &models.ConfirmationRequest{
		Category:    opts.Category,
		Title:       title,
		Description: description,
		Content:     opts.Content,
		Dangerous:   opts.Dangerous || opts.Category == models.CategoryDelete,
	}
	c.onConfirm = opts.OnConfirm
	c.onCancel = opts.OnCancel
}

// Confirm runs the registered confirm callback. On success the dialog closes;
// on failure it stays open with loading reset so the user can retry or cancel.
// The error is logged, not surfaced - callers watching the dialog observe only
// the state. No-op unless open with a confirm callback registered.
func (c *ConfirmController) Confirm() {
	c.mu.Lock()
	if c.state != DialogOpen || c.onConfirm == nil {
		c.mu.Unlock()
		return
	}
	c.state = DialogConfirming
	c.request.Loading = true
	callback := c.onConfirm
	c.mu.Unlock()

	err := callback()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.Error("confirmation action failed", zap.Error(err))
		c.state = DialogOpen
		if c.request != nil {
			c.request.Loading = false
		}
		return
	}
	c.closeLocked()
}

// Cancel invokes the optional cancel callback and closes unconditionally.
func (c *ConfirmController) Cancel() {
	c.mu.Lock()
	callback := c.onCancel
	c.closeLocked()
	c.mu.Unlock()

	if callback != nil {
		callback()
	}
}

func (c *ConfirmController) closeLocked() {
	c.state = DialogClosed
	c.request = nil
	c.onConfirm = nil
	c.onCancel = nil
}

func (c *ConfirmController) State() DialogState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *ConfirmController) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != DialogClosed
}

// Request returns a copy of the current request, nil when closed.
func (c *ConfirmController) Request() *models.ConfirmationRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.request == nil {
		return nil
	}
	req := *c.request
	return &req
}
