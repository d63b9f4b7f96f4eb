package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aquilax/debateboard/argument"
	"github.com/aquilax/debateboard/database"
	"github.com/gorilla/mux"
)

type voteRequest struct {
	Type string `json:"type" validate:"required,oneof=UPVOTE DOWNVOTE"`
}

const maxPasswordBytes = 72

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=80"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type topicRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Category    string `json:"category" validate:"max=60"`
}

type argumentRequest struct {
	TopicID          string  `json:"topicId" validate:"required"`
	ParentArgumentID *string `json:"parentArgumentId" validate:"omitempty,min=1"`
	Content          string  `json:"content" validate:"required,max=10000"`
	Type             string  `json:"type" validate:"required,oneof=PRO CONTRA NEUTRO"`
	ReferenceURL     *string `json:"referenceUrl" validate:"omitempty,url"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED"`
}

// Vote outcomes are always reported in voteLanguage, whatever the client
// accepts.
const voteLanguage = "pt"

var voteMessages = map[argument.Outcome]string{
	argument.Removed:    "Vote removed.",
	argument.Changed:    "Vote changed.",
	argument.Registered: "Vote registered.",
}

// topicView is a topic as served to readers.
type topicView struct {
	*argument.Topic
	Slug            string `json:"slug"`
	DescriptionHTML string `json:"descriptionHtml"`
}

func newTopicView(t *argument.Topic) *topicView {
	return &topicView{
		Topic:           t,
		Slug:            hfSlug(t.Title),
		DescriptionHTML: renderText(t.Description),
	}
}

func requireAdmin(s *Session) (*Identity, error) {
	id, err := requireUser(s)
	if err != nil {
		return nil, err
	}
	if id.Role != argument.RoleAdmin {
		return nil, newHTTPError(http.StatusForbidden, s.Lang("Forbidden."), ErrForbidden)
	}
	return id, nil
}

func (d *DebateBoard) setPageLinks(w http.ResponseWriter, r *http.Request, page, limit, total int) {
	w.Header().Set("Link", Pagination(PaginationConfig{
		ipp:   limit,
		page:  page,
		total: total,
		url:   r.URL.String(),
		param: "page",
	}).Header())
}

func (d *DebateBoard) treeHandler(w http.ResponseWriter, r *http.Request) error {
	s := d.session(r)
	topicID := argument.TopicID(mux.Vars(r)["topicID"])
	page, limit := pageParams(r, d.config.DefaultPageSize, d.config.MaxPageSize)

	start := time.Now()
	tree, err := d.m.getTree(r.Context(), topicID, page, limit)
	d.metrics.TreeFetchSeconds.Observe(time.Since(start).Seconds())
	if errors.Is(err, database.ErrNotFound) {
		return notFound(s.Lang("Topic not found."), err)
	}
	if err != nil {
		return err
	}
	d.setPageLinks(w, r, page, limit, tree.Total)
	return s.render(w, http.StatusOK, tree)
}

func (d *DebateBoard) voteHandler(w http.ResponseWriter, r *http.Request) error {
	s := d.session(r)
	id, err := requireUser(s)
	if err != nil {
		return err
	}
	var req voteRequest
	if err := d.decode(r, s, &req); err != nil {
		return err
	}
	argumentID := argument.ArgumentID(mux.Vars(r)["argumentID"])
	outcome, err := d.m.toggleVote(r.Context(), id.UserID, argumentID, argument.Direction(req.Type))
	if errors.Is(err, database.ErrNotFound) {
		return notFound(s.Lang("Argument not found."), err)
	}
	if err != nil {
		return err
	}
	d.metrics.VotesTotal.WithLabelValues(outcome.String()).Inc()
	d.log.Debug("vote toggled", "voter", id.UserID, "argument", argumentID, "outcome", outcome)
	return s.render(w, http.StatusOK, Response{"message": d.tp.Get(voteLanguage).Lang(voteMessages[outcome])})
}

func (d *DebateBoard) getVoteHandler(w http.ResponseWriter, r *http.Request) error {
	s := d.session(r)
	id, err := requireUser(s)
	if err != nil {
		return err
	}
	argumentID := argument.ArgumentID(mux.Vars(r)["argumentID"])
	v, err := d.m.getVote(r.Context(), id.UserID, argumentID)
	if errors.Is(err, database.ErrNotFound) {
		return notFound(s.Lang("Argument not found."), err)
	}
	if err != nil {
		return err
	}
	var direction *argument.Direction
	if v != nil {
		direction = &v.Direction
	}
	return s.render(w, http.StatusOK, Response{"type": direction})
}

func (d *DebateBoard) addArgumentHandler(w http.ResponseWriter, r *http.Request) error {
	s := d.session(r)
	id, err := requireUser(s)
	if err != nil {
		return err
	}
	var req argumentRequest
	if err := d.decode(r, s, &req); err != nil {
		return err
	}
	content := sanitizeContent(req.Content)
	if content == "" {
		return badRequest(s.Lang("Content is empty."), ErrEmptyContent)
	}
	if !d.sg.CanPost(id.UserID) {
		return newHTTPError(http.StatusTooManyRequests, s.Lang("Please wait before posting again."), nil)
	}
	a, err := d.m.addArgument(r.Context(), id.UserID, NewArgument{
		TopicID:      argument.TopicID(req.TopicID),
		ParentID:     req.ParentArgumentID,
		Content:      content,
		Type:         argument.Stance(req.Type),
		ReferenceURL: req.ReferenceURL,
	})
	switch {
	case errors.Is(err, ErrParentNotFound):
		return notFound(s.Lang("Parent argument not found."), err)
	case errors.Is(err, database.ErrNotFound):
		return notFound(s.Lang("Topic not found."), err)
	case errors.Is(err, ErrTopicClosed):
		return newHTTPError(http.StatusConflict, s.Lang("Topic is not open for arguments."), err)
	case errors.Is(err, ErrParentMismatch):
		return badRequest(s.Lang("Parent argument belongs to another topic."), err)
	case errors.Is(err, ErrEmptyContent):
		return badRequest(s.Lang("Content is empty."), err)
	case err != nil:
		return err
	}
	return s.render(w, http.StatusCreated, argument.NewNode(*a))
}

func (d *DebateBoard) deleteArgumentHandler(w http.ResponseWriter, r *http.Request) error {
	s := d.session(r)
	id, err := requireUser(s)
	if err != nil {
		return err
	}
	argumentID := argument.ArgumentID(mux.Vars(r)["argumentID"])
	err = d.m.deleteArgument(r.Context(), id, argumentID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return notFound(s.Lang("Argument not found."), err)
	case errors.Is(err, database.ErrConflict):
		return newHTTPError(http.StatusConflict, s.Lang("Argument has replies and cannot be deleted."), err)
	case errors.Is(err, ErrForbidden):
		return newHTTPError(http.StatusForbidden, s.Lang("Forbidden."), err)
	case err != nil:
		return err
	}
	return s.render(w, http.StatusOK, s.Message("Argument deleted."))
}

func (d *DebateBoard) registerHandler(w http.ResponseWriter, r *http.Request) error {
	s := d.session(r)
	var req registerRequest
	if err := d.decode(r, s, &req); err != nil {
		return err
	}
	// bcrypt limits passwords to 72 bytes, the validator counts runes.
	if len(req.Password) > maxPasswordBytes {
		return &HTTPError{
			Message: s.Lang("Invalid request body."),
			Code:    http.StatusBadRequest,
			Fields:  []string{"Password"},
		}
	}
	role := argument.RoleUser
	if d.config.isAdmin(strings.TrimSpace(req.Email)) {
		role = argument.RoleAdmin
	}
	u, err := d.m.register(r.Context(), req.Name, req.Email, req.Password, role)
	if errors.Is(err, database.ErrConflict) {
		return newHTTPError(http.StatusConflict, s.Lang("Email already registered."), err)
	}
	if err != nil {
		return err
	}
	token, err := d.auth.Issue(u)
	if err != nil {
		return err
	}
	d.log.Info("user registered", "user", u.ID, "role", u.Role)
	return s.render(w, http.StatusCreated, Response{"token": token, "user": u})
}

func (d *DebateBoard) loginHandler(w http.ResponseWriter, r *http.Request) error {
	s := d.session(r)
	var req loginRequest
	if err := d.decode(r, s, &req); err != nil {
		return err
	}
	u, err := d.m.authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		return newHTTPError(http.StatusUnauthorized, s.Lang("Invalid credentials."), err)
	}
	if err != nil {
		return err
	}
	token, err := d.auth.Issue(u)
	if err != nil {
		return err
	}
	return s.render(w, http.StatusOK, Response{"token": token, "user": u})
}

func (d *DebateBoard) meHandler(w http.ResponseWriter, r *http.Request) error {
	s := d.session(r)
	id, err := requireUser(s)
	if err != nil {
		return err
	}
	u, err := d.m.getUser(r.Context(), id.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return notFound(s.Lang("User not found."), err)
	}
	if err != nil {
		return err
	}
	return s.render(w, http.StatusOK, u)
}

func (d *DebateBoard) topicsHandler(w http.ResponseWriter, r *http.Request) error {
	s := d.session(r)
	page, limit := pageParams(r, d.config.DefaultPageSize, d.config.MaxPageSize)
	tp, err := d.m.getTopics(r.Context(), argument.StatusApproved, page, limit)
	if err != nil {
		return err
	}
	d.setPageLinks(w, r, page, limit, tp.Total)
	return s.render(w, http.StatusOK, tp)
}

func (d *DebateBoard) topicHandler(w http.ResponseWriter, r *http.Request) error {
	s := d.session(r)
	t, err := d.m.getTopic(r.Context(), argument.TopicID(mux.Vars(r)["topicID"]))
	if errors.Is(err, database.ErrNotFound) {
		return notFound(s.Lang("Topic not found."), err)
	}
	if err != nil {
		return err
	}
	return s.render(w, http.StatusOK, newTopicView(t))
}

func (d *DebateBoard) addTopicHandler(w http.ResponseWriter, r *http.Request) error {
	s := d.session(r)
	id, err := requireUser(s)
	if err != nil {
		return err
	}
	var req topicRequest
	if err := d.decode(r, s, &req); err != nil {
		return err
	}
	if !d.sg.CanPost(id.UserID) {
		return newHTTPError(http.StatusTooManyRequests, s.Lang("Please wait before posting again."), nil)
	}
	author := id.UserID
	t, err := d.m.addTopic(r.Context(), &author, req.Title, req.Description, req.Category, argument.StatusPending)
	if err != nil {
		return err
	}
	return s.render(w, http.StatusCreated, newTopicView(t))
}

func (d *DebateBoard) moderationQueueHandler(w http.ResponseWriter, r *http.Request) error {
	s := d.session(r)
	if _, err := requireAdmin(s); err != nil {
		return err
	}
	status := argument.TopicStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = argument.StatusPending
	}
	if !status.Valid() {
		return badRequest(s.Lang("Invalid request body."), nil)
	}
	page, limit := pageParams(r, d.config.DefaultPageSize, d.config.MaxPageSize)
	tp, err := d.m.getTopics(r.Context(), status, page, limit)
	if err != nil {
		return err
	}
	d.setPageLinks(w, r, page, limit, tp.Total)
	return s.render(w, http.StatusOK, tp)
}

func (d *DebateBoard) topicStatusHandler(w http.ResponseWriter, r *http.Request) error {
	s := d.session(r)
	admin, err := requireAdmin(s)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := d.decode(r, s, &req); err != nil {
		return err
	}
	topicID := argument.TopicID(mux.Vars(r)["topicID"])
	err = d.m.setTopicStatus(r.Context(), topicID, argument.TopicStatus(req.Status))
	if err == nil {
		var t *argument.Topic
		if t, err = d.m.getTopic(r.Context(), topicID); err == nil {
			d.log.Info("topic moderated", "topic", topicID, "status", req.Status, "admin", admin.UserID)
			return s.render(w, http.StatusOK, newTopicView(t))
		}
	}
	if errors.Is(err, database.ErrNotFound) {
		return notFound(s.Lang("Topic not found."), err)
	}
	return err
}

func (d *DebateBoard) pointsHandler(w http.ResponseWriter, r *http.Request) error {
	s := d.session(r)
	p, err := d.m.getPoints(r.Context(), argument.UserID(mux.Vars(r)["userID"]))
	if errors.Is(err, database.ErrNotFound) {
		return notFound(s.Lang("User not found."), err)
	}
	if err != nil {
		return err
	}
	return s.render(w, http.StatusOK, p)
}
