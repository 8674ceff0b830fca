package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"watchlist-gateway/internal/database"
	"watchlist-gateway/internal/models"
	"watchlist-gateway/internal/sanitize"
	"watchlist-gateway/internal/session"
	"watchlist-gateway/internal/validate"
)

const (
	listLimit    = 1000
	listCacheKey = "watchlist:items"
	listCacheTTL = 5 * time.Minute
)

// Connector abstracts credentialed pool construction so the gateway can be
// exercised without a live database.
type Connector interface {
	Connect(ctx context.Context, username, password string) (session.Store, error)
}

// WatchListGateway composes validation, session state and the connection
// manager into the five caller-facing operations. Every operation returns a
// structured result; none of them panics or leaves the session partially
// mutated on failure.
type WatchListGateway struct {
	session   *session.Session
	connector Connector
	redis     *redis.Client
}

// NewWatchListGateway creates a new WatchListGateway.
func NewWatchListGateway(sess *session.Session, connector Connector, rdb *redis.Client) *WatchListGateway {
	return &WatchListGateway{
		session:   sess,
		connector: connector,
		redis:     rdb,
	}
}

// Authenticate opens and verifies a credentialed pool, then installs it in
// the session. Empty credentials fail locally without a network call. On any
// failure the session is left exactly as it was; re-authenticating closes
// the displaced pool rather than leaking it.
func (g *WatchListGateway) Authenticate(ctx context.Context, creds models.Credentials) models.AuthResponse {
	if strings.TrimSpace(creds.Username) == "" {
		return models.AuthResponse{Success: false, Message: "Username cannot be empty"}
	}
	if strings.TrimSpace(creds.Password) == "" {
		return models.AuthResponse{Success: false, Message: "Password cannot be empty"}
	}

	slog.Info("attempting authentication", "user", creds.Username)

	store, err := g.connector.Connect(ctx, creds.Username, creds.Password)
	if err != nil {
		// The two failure classes get deliberately generic messages so the
		// caller learns nothing about the schema.
		if errors.Is(err, database.ErrVerification) {
			slog.Warn("permission verification failed", "user", creds.Username, "error", err)
			return models.AuthResponse{
				Success: false,
				Message: "Authentication failed: Insufficient database permissions or watch_list table not found",
			}
		}
		slog.Warn("connection failed", "user", creds.Username, "error", err)
		return models.AuthResponse{
			Success: false,
			Message: "Authentication failed: Invalid username or password",
		}
	}

	if prev := g.session.Replace(store); prev != nil {
		if err := prev.Close(); err != nil {
			slog.Error("failed to close replaced pool", "error", err)
		}
	}
	g.dropListCache(ctx)

	slog.Info("authentication successful", "user", creds.Username)
	return models.AuthResponse{Success: true, Message: "Authentication successful"}
}

// Logout closes any held pool and clears the session. Idempotent: calling it
// while unauthenticated still reports success.
func (g *WatchListGateway) Logout(ctx context.Context) models.AuthResponse {
	if prev := g.session.Clear(); prev != nil {
		if err := prev.Close(); err != nil {
			slog.Error("failed to close pool on logout", "error", err)
		}
	}
	g.dropListCache(ctx)

	slog.Info("logout successful")
	return models.AuthResponse{Success: true, Message: "Logged out successfully"}
}

// List returns up to 1000 stored items ordered by id ascending. Names are
// re-sanitized on the way out as defense against data inserted through
// other paths.
func (g *WatchListGateway) List(ctx context.Context) models.Response {
	store, ok := g.session.Store()
	if !ok {
		return models.Fail(validate.ErrAuthenticationRequired.Error())
	}

	if items, err := g.getListCache(ctx); err == nil {
		return listResponse(items)
	}

	items, err := store.ListItems(ctx, listLimit)
	if err != nil {
		slog.Error("failed to retrieve watch list items", "error", err)
		return models.Fail("Failed to retrieve watch list items from database")
	}

	for i := range items {
		items[i].Name = sanitize.Sanitize(items[i].Name)
	}
	g.setListCache(ctx, items)

	return listResponse(items)
}

// Insert validates, sanitizes and stores one item. The name is sanitized
// before validation, so escaped entities must themselves pass the name
// pattern; the sanitized name is re-checked for emptiness because
// sanitization can empty a name that validated beforehand.
func (g *WatchListGateway) Insert(ctx context.Context, item models.WatchListItem) models.Response {
	store, ok := g.session.Store()
	if !ok {
		return models.Fail(validate.ErrAuthenticationRequired.Error())
	}

	if _, err := models.ParseMediaType(string(item.MediaType)); err != nil {
		return models.Fail(err.Error())
	}

	name := sanitize.Sanitize(item.Name)
	if err := validate.Name(name); err != nil {
		return models.Fail(err.Error())
	}
	if err := validate.Rating(item.Rating); err != nil {
		return models.Fail(err.Error())
	}
	if strings.TrimSpace(name) == "" {
		return models.Fail(validate.EmptyFieldError{Field: "Name"}.Error())
	}

	exists, err := store.ItemExists(ctx, name, item.MediaType)
	if err != nil {
		slog.Error("failed to check for duplicates", "error", err)
		return models.Fail("Failed to verify uniqueness. Please try again.")
	}
	if exists {
		dup := validate.DuplicateEntryError{MediaType: item.MediaType.Label(), Name: name}
		return models.Fail(dup.Error())
	}

	item.Name = name
	rows, err := store.InsertItem(ctx, item)
	if err != nil {
		slog.Error("failed to insert watch list item", "error", err)
		return models.Fail(insertFailureMessage(err))
	}
	g.dropListCache(ctx)

	slog.Info("inserted watch list item", "name", item.Name, "media_type", item.MediaType, "rating", item.Rating)
	return models.Response{
		Success:      true,
		Message:      "Item added to watch list successfully",
		RowsAffected: rows,
	}
}

// DeleteBatch removes the items matching ids. Duplicated input ids are
// collapsed before the delete, so rows_affected counts matched rows, and
// ids that matched nothing are not an error.
func (g *WatchListGateway) DeleteBatch(ctx context.Context, ids []int) models.Response {
	store, ok := g.session.Store()
	if !ok {
		return models.Fail(validate.ErrAuthenticationRequired.Error())
	}

	if err := validate.IDsForDeletion(ids); err != nil {
		return models.Fail(err.Error())
	}

	rows, err := store.DeleteItems(ctx, dedupIDs(ids))
	if err != nil {
		slog.Error("failed to delete watch list items", "error", err)
		return models.Fail("Failed to delete items from watch list")
	}
	g.dropListCache(ctx)

	slog.Info("deleted watch list items", "rows_affected", rows)
	return models.Response{
		Success:      true,
		Message:      fmt.Sprintf("Successfully deleted %d item(s)", rows),
		RowsAffected: rows,
	}
}

// insertFailureMessage collapses classified storage errors into the three
// coarse user-facing messages.
func insertFailureMessage(err error) string {
	classified := database.Classify(err)
	switch {
	case errors.Is(classified, database.ErrPermissionDenied):
		return "Database permission error: Insufficient privileges to insert data."
	case errors.Is(classified, database.ErrConnection), errors.Is(classified, database.ErrInvalidCredentials):
		return "Database connection error: Unable to connect to database."
	default:
		return "Failed to add item to watch list."
	}
}

func listResponse(items []models.WatchListItem) models.Response {
	return models.Response{
		Success:      true,
		Message:      fmt.Sprintf("Retrieved %d items successfully", len(items)),
		RowsAffected: int64(len(items)),
		Data:         items,
	}
}

func dedupIDs(ids []int) []int {
	out := make([]int, len(ids))
	copy(out, ids)
	sort.Ints(out)
	return slices.Compact(out)
}

// ---- Redis helpers ----

func (g *WatchListGateway) getListCache(ctx context.Context) ([]models.WatchListItem, error) {
	if g.redis == nil {
		return nil, errors.New("redis not available")
	}
	raw, err := g.redis.Get(ctx, listCacheKey).Result()
	if err != nil {
		return nil, err
	}
	var items []models.WatchListItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	slog.Debug("cache hit", "key", listCacheKey)
	return items, nil
}

func (g *WatchListGateway) setListCache(ctx context.Context, items []models.WatchListItem) {
	if g.redis == nil {
		return
	}
	data, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := g.redis.Set(ctx, listCacheKey, string(data), listCacheTTL).Err(); err != nil {
		slog.Error("failed to set cache", "key", listCacheKey, "error", err)
	}
}

func (g *WatchListGateway) dropListCache(ctx context.Context) {
	if g.redis == nil {
		return
	}
	g.redis.Del(ctx, listCacheKey)
}
