// Package handlers exposes the storefront call sites over HTTP.
package handlers

import (
	"context"
	"errors"

	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/builders"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/catalog"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/identity"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/session"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/tracking"
	"github.com/gaborage/go-bricks/logger"
	"github.com/gaborage/go-bricks/server"
)

type CreateSessionRequest struct {
	Host         string `json:"host"`
	URL          string `json:"url"`
	Referrer     string `json:"referrer"`
	UserAgent    string `json:"userAgent"`
	ScreenWidth  int    `json:"screenWidth"`
	ScreenHeight int    `json:"screenHeight"`
}

type SessionRequest struct {
	SessionID string `param:"sessionId" binding:"required"`
}

type NavigateRequest struct {
	SessionID string `param:"sessionId" binding:"required"`
	Page      string `json:"page" binding:"required"`
	URL       string `json:"url"`
	Referrer  string `json:"referrer"`
}

type CategoryRequest struct {
	SessionID string `param:"sessionId" binding:"required"`
	Category  string `param:"category" binding:"required"`
}

type FeaturedRequest struct {
	SessionID string `param:"sessionId" binding:"required"`
	Category  string `json:"category" binding:"required"`
}

type SortRequest struct {
	SessionID string `param:"sessionId" binding:"required"`
	Category  string `param:"category" binding:"required"`
	SortBy    string `json:"sortBy" binding:"required"`
}

type ProductRequest struct {
	SessionID string `param:"sessionId" binding:"required"`
	ProductID string `param:"productId" binding:"required"`
}

type AddToCartRequest struct {
	SessionID string `param:"sessionId" binding:"required"`
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type MethodRequest struct {
	SessionID string `param:"sessionId" binding:"required"`
	Method    string `json:"method" binding:"required"`
}

type LoginTabRequest struct {
	SessionID string `param:"sessionId" binding:"required"`
	Tab       string `json:"tab" binding:"required"`
}

type SignInRequest struct {
	SessionID string `param:"sessionId" binding:"required"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type RegisterRequest struct {
	SessionID string `param:"sessionId" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
}

type CheckoutStepRequest struct {
	SessionID string `param:"sessionId" binding:"required"`
	Step      int    `json:"step" binding:"required"`
	StepName  string `json:"stepName"`
}

type PlaceOrderRequest struct {
	SessionID    string `param:"sessionId" binding:"required"`
	CustomerName string `json:"customerName"`
}

type ListCategoriesRequest struct{}

type SessionResponse struct {
	SessionID   string              `json:"sessionId"`
	CreatedAt   string              `json:"createdAt"`
	Identity    domain.Identity     `json:"identity"`
	Cart        domain.CartSnapshot `json:"cart"`
	Environment domain.Environment  `json:"environment"`
}

type IdentityResponse struct {
	Identity domain.Identity `json:"identity"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

type ProductsResponse struct {
	Products []domain.ProductRecord `json:"products"`
}

// TrackerInterface defines the call sites used by the handlers
type TrackerInterface interface {
	PageView(sess *session.Session, page string) (domain.PageContext, error)
	CategoryView(ctx context.Context, sess *session.Session, category string) (tracking.CategoryListing, error)
	ProductView(ctx context.Context, sess *session.Session, productID string) (domain.ProductRecord, error)
	AddToCart(ctx context.Context, sess *session.Session, productID string, quantity int) (domain.CartSnapshot, error)
	RemoveFromCart(sess *session.Session, productID string) (domain.CartSnapshot, error)
	CategoryTabClick(ctx context.Context, sess *session.Session, category string) ([]domain.ProductRecord, error)
	SortProducts(ctx context.Context, sess *session.Session, category, sortBy string) (tracking.CategoryListing, error)
	SelectDelivery(sess *session.Session, method string) domain.CartSnapshot
	SelectPayment(sess *session.Session, method string) domain.CartSnapshot
	LoginTabSwitch(sess *session.Session, tab string)
	SignIn(ctx context.Context, sess *session.Session, creds identity.Credentials) (domain.Identity, error)
	Register(ctx context.Context, sess *session.Session, profile identity.Profile) (domain.Identity, error)
	GuestCheckout(ctx context.Context, sess *session.Session) (domain.Identity, error)
	CheckoutStep(sess *session.Session, step int, stepName string) domain.CartSnapshot
	PlaceOrder(sess *session.Session, customerName string) (tracking.OrderReceipt, error)
}

// SessionStore resolves and creates shopper sessions
type SessionStore interface {
	Create(env domain.Environment) *session.Session
	Get(id string) (*session.Session, error)
}

type StorefrontHandler struct {
	tracker  TrackerInterface
	sessions SessionStore
	catalog  catalog.Provider
	site     domain.Site
	logger   logger.Logger
}

func NewStorefrontHandler(t TrackerInterface, s SessionStore, c catalog.Provider, site domain.Site, l logger.Logger) *StorefrontHandler {
	return &StorefrontHandler{
		tracker:  t,
		sessions: s,
		catalog:  c,
		site:     site,
		logger:   l,
	}
}

func (h *StorefrontHandler) toSessionResponse(sess *session.Session) *SessionResponse {
	return &SessionResponse{
		SessionID:   sess.ID(),
		CreatedAt:   sess.CreatedAt().Format("2006-01-02T15:04:05Z07:00"),
		Identity:    sess.Identity(),
		Cart:        builders.Cart(h.site, sess),
		Environment: sess.Environment(),
	}
}

func (h *StorefrontHandler) session(id string) (*session.Session, server.IAPIError) {
	sess, err := h.sessions.Get(id)
	if err != nil {
		return nil, h.apiError(err, id, "Failed to resolve session")
	}
	return sess, nil
}

// apiError maps call-site errors to HTTP errors; unexpected errors are logged.
func (h *StorefrontHandler) apiError(err error, sessionID, msg string) server.IAPIError {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return server.NewBadRequestError(validationErr.Error())
	case errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, identity.ErrIdentityConflict),
		errors.Is(err, tracking.ErrEmptyCart),
		errors.Is(err, tracking.ErrUnknownPage):
		return server.NewBadRequestError(err.Error())
	case errors.Is(err, session.ErrSessionNotFound):
		return server.NewNotFoundError("Session")
	case errors.Is(err, catalog.ErrProductNotFound):
		return server.NewNotFoundError("Product")
	case errors.Is(err, catalog.ErrCategoryNotFound):
		return server.NewNotFoundError("Category")
	case errors.Is(err, tracking.ErrNotInCart):
		return server.NewNotFoundError("Cart item")
	}
	h.logger.Error().Err(err).Str("sessionId", sessionID).Msg(msg)
	return server.NewInternalServerError(msg)
}

func (h *StorefrontHandler) CreateSession(req CreateSessionRequest, _ server.HandlerContext) (server.Result[*SessionResponse], server.IAPIError) {
	sess := h.sessions.Create(domain.Environment{
		Host:         req.Host,
		URL:          req.URL,
		Referrer:     req.Referrer,
		UserAgent:    req.UserAgent,
		ScreenWidth:  req.ScreenWidth,
		ScreenHeight: req.ScreenHeight,
	})
	return server.Created(h.toSessionResponse(sess)), nil
}

func (h *StorefrontHandler) GetSession(req SessionRequest, _ server.HandlerContext) (*SessionResponse, server.IAPIError) {
	sess, apiErr := h.session(req.SessionID)
	if apiErr != nil {
		return nil, apiErr
	}
	return h.toSessionResponse(sess), nil
}

func (h *StorefrontHandler) Navigate(req NavigateRequest, _ server.HandlerContext) (*domain.PageContext, server.IAPIError) {
	sess, apiErr := h.session(req.SessionID)
	if apiErr != nil {
		return nil, apiErr
	}
	sess.Navigate(req.URL, req.Referrer)

	pc, err := h.tracker.PageView(sess, req.Page)
	if err != nil {
		return nil, h.apiError(err, req.SessionID, "Failed to record page view")
	}
	return &pc, nil
}

func (h *StorefrontHandler) ListCategories(_ ListCategoriesRequest, ctx server.HandlerContext) (*CategoriesResponse, server.IAPIError) {
	categories, err := h.catalog.Categories(ctx.Echo.Request().Context())
	if err != nil {
		return nil, h.apiError(err, "", "Failed to list categories")
	}
	return &CategoriesResponse{Categories: categories}, nil
}

func (h *StorefrontHandler) ViewCategory(req CategoryRequest, ctx server.HandlerContext) (*tracking.CategoryListing, server.IAPIError) {
	sess, apiErr := h.session(req.SessionID)
	if apiErr != nil {
		return nil, apiErr
	}

	listing, err := h.tracker.CategoryView(ctx.Echo.Request().Context(), sess, req.Category)
	if err != nil {
		return nil, h.apiError(err, req.SessionID, "Failed to view category")
	}
	return &listing, nil
}

func (h *StorefrontHandler) SortCategory(req SortRequest, ctx server.HandlerContext) (*tracking.CategoryListing, server.IAPIError) {
	sess, apiErr := h.session(req.SessionID)
	if apiErr != nil {
		return nil, apiErr
	}

	listing, err := h.tracker.SortProducts(ctx.Echo.Request().Context(), sess, req.Category, req.SortBy)
	if err != nil {
		return nil, h.apiError(err, req.SessionID, "Failed to sort products")
	}
	return &listing, nil
}

func (h *StorefrontHandler) FeatureCategory(req FeaturedRequest, ctx server.HandlerContext) (*ProductsResponse, server.IAPIError) {
	sess, apiErr := h.session(req.SessionID)
	if apiErr != nil {
		return nil, apiErr
	}

	products, err := h.tracker.CategoryTabClick(ctx.Echo.Request().Context(), sess, req.Category)
	if err != nil {
		return nil, h.apiError(err, req.SessionID, "Failed to switch featured category")
	}
	return &ProductsResponse{Products: products}, nil
}

func (h *StorefrontHandler) ViewProduct(req ProductRequest, ctx server.HandlerContext) (*domain.ProductRecord, server.IAPIError) {
	sess, apiErr := h.session(req.SessionID)
	if apiErr != nil {
		return nil, apiErr
	}

	record, err := h.tracker.ProductView(ctx.Echo.Request().Context(), sess, req.ProductID)
	if err != nil {
		return nil, h.apiError(err, req.SessionID, "Failed to view product")
	}
	return &record, nil
}

func (h *StorefrontHandler) AddToCart(req AddToCartRequest, ctx server.HandlerContext) (*domain.CartSnapshot, server.IAPIError) {
	sess, apiErr := h.session(req.SessionID)
	if apiErr != nil {
		return nil, apiErr
	}

	cart, err := h.tracker.AddToCart(ctx.Echo.Request().Context(), sess, req.ProductID, req.Quantity)
	if err != nil {
		return nil, h.apiError(err, req.SessionID, "Failed to add to cart")
	}
	return &cart, nil
}

func (h *StorefrontHandler) RemoveFromCart(req ProductRequest, _ server.HandlerContext) (*domain.CartSnapshot, server.IAPIError) {
	sess, apiErr := h.session(req.SessionID)
	if apiErr != nil {
		return nil, apiErr
	}

	cart, err := h.tracker.RemoveFromCart(sess, req.ProductID)
	if err != nil {
		return nil, h.apiError(err, req.SessionID, "Failed to remove from cart")
	}
	return &cart, nil
}

func (h *StorefrontHandler) SelectDelivery(req MethodRequest, _ server.HandlerContext) (*domain.CartSnapshot, server.IAPIError) {
	sess, apiErr := h.session(req.SessionID)
	if apiErr != nil {
		return nil, apiErr
	}
	cart := h.tracker.SelectDelivery(sess, req.Method)
	return &cart, nil
}

func (h *StorefrontHandler) SelectPayment(req MethodRequest, _ server.HandlerContext) (*domain.CartSnapshot, server.IAPIError) {
	sess, apiErr := h.session(req.SessionID)
	if apiErr != nil {
		return nil, apiErr
	}
	cart := h.tracker.SelectPayment(sess, req.Method)
	return &cart, nil
}

func (h *StorefrontHandler) CheckoutStep(req CheckoutStepRequest, _ server.HandlerContext) (*domain.CartSnapshot, server.IAPIError) {
	sess, apiErr := h.session(req.SessionID)
	if apiErr != nil {
		return nil, apiErr
	}
	cart := h.tracker.CheckoutStep(sess, req.Step, req.StepName)
	return &cart, nil
}

func (h *StorefrontHandler) SwitchLoginTab(req LoginTabRequest, _ server.HandlerContext) (server.NoContentResult, server.IAPIError) {
	sess, apiErr := h.session(req.SessionID)
	if apiErr != nil {
		return server.NoContentResult{}, apiErr
	}
	h.tracker.LoginTabSwitch(sess, req.Tab)
	return server.NoContent(), nil
}

func (h *StorefrontHandler) SignIn(req SignInRequest, ctx server.HandlerContext) (*IdentityResponse, server.IAPIError) {
	sess, apiErr := h.session(req.SessionID)
	if apiErr != nil {
		return nil, apiErr
	}

	id, err := h.tracker.SignIn(ctx.Echo.Request().Context(), sess, identity.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return nil, h.apiError(err, req.SessionID, "Failed to sign in")
	}
	return &IdentityResponse{Identity: id}, nil
}

func (h *StorefrontHandler) Register(req RegisterRequest, ctx server.HandlerContext) (server.Result[*IdentityResponse], server.IAPIError) {
	sess, apiErr := h.session(req.SessionID)
	if apiErr != nil {
		return server.Result[*IdentityResponse]{}, apiErr
	}

	id, err := h.tracker.Register(ctx.Echo.Request().Context(), sess, identity.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
	})
	if err != nil {
		return server.Result[*IdentityResponse]{}, h.apiError(err, req.SessionID, "Failed to register")
	}
	return server.Created(&IdentityResponse{Identity: id}), nil
}

func (h *StorefrontHandler) ContinueAsGuest(req SessionRequest, ctx server.HandlerContext) (*IdentityResponse, server.IAPIError) {
	sess, apiErr := h.session(req.SessionID)
	if apiErr != nil {
		return nil, apiErr
	}

	id, err := h.tracker.GuestCheckout(ctx.Echo.Request().Context(), sess)
	if err != nil {
		return nil, h.apiError(err, req.SessionID, "Failed to continue as guest")
	}
	return &IdentityResponse{Identity: id}, nil
}

func (h *StorefrontHandler) PlaceOrder(req PlaceOrderRequest, _ server.HandlerContext) (server.Result[*tracking.OrderReceipt], server.IAPIError) {
	sess, apiErr := h.session(req.SessionID)
	if apiErr != nil {
		return server.Result[*tracking.OrderReceipt]{}, apiErr
	}

	receipt, err := h.tracker.PlaceOrder(sess, req.CustomerName)
	if err != nil {
		return server.Result[*tracking.OrderReceipt]{}, h.apiError(err, req.SessionID, "Failed to place order")
	}
	return server.Created(&receipt), nil
}

// RegisterRoutes registers storefront HTTP routes
func (h *StorefrontHandler) RegisterRoutes(hr *server.HandlerRegistry, r server.RouteRegistrar) {
	server.GET(hr, r, "/storefront/categories", h.ListCategories)

	server.POST(hr, r, "/storefront/sessions", h.CreateSession)
	server.GET(hr, r, "/storefront/sessions/:sessionId", h.GetSession)
	server.POST(hr, r, "/storefront/sessions/:sessionId/navigate", h.Navigate)

	server.GET(hr, r, "/storefront/sessions/:sessionId/categories/:category", h.ViewCategory)
	server.POST(hr, r, "/storefront/sessions/:sessionId/categories/:category/sort", h.SortCategory)
	server.POST(hr, r, "/storefront/sessions/:sessionId/featured", h.FeatureCategory)
	server.GET(hr, r, "/storefront/sessions/:sessionId/products/:productId", h.ViewProduct)

	server.POST(hr, r, "/storefront/sessions/:sessionId/cart/items", h.AddToCart)
	server.DELETE(hr, r, "/storefront/sessions/:sessionId/cart/items/:productId", h.RemoveFromCart)

	server.POST(hr, r, "/storefront/sessions/:sessionId/login/tab", h.SwitchLoginTab)
	server.POST(hr, r, "/storefront/sessions/:sessionId/signin", h.SignIn)
	server.POST(hr, r, "/storefront/sessions/:sessionId/register", h.Register)
	server.POST(hr, r, "/storefront/sessions/:sessionId/guest", h.ContinueAsGuest)

	server.POST(hr, r, "/storefront/sessions/:sessionId/checkout/delivery", h.SelectDelivery)
	server.POST(hr, r, "/storefront/sessions/:sessionId/checkout/payment", h.SelectPayment)
	server.POST(hr, r, "/storefront/sessions/:sessionId/checkout/steps", h.CheckoutStep)
	server.POST(hr, r, "/storefront/sessions/:sessionId/orders", h.PlaceOrder)
}
