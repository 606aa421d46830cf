package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gymkiosk/internal/auth"
	"gymkiosk/internal/kiosk"
	"gymkiosk/internal/model"
	"gymkiosk/internal/session"
	"gymkiosk/internal/store"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

const sessionCookie = "kiosk_session"

// Handler serves the kiosk screens and the terminal JSON API.
type Handler struct {
	svc      *kiosk.Service
	sessions session.Store
	log      *zap.Logger
}

// New builds a handler.
func New(svc *kiosk.Service, sessions session.Store, log *zap.Logger) *Handler {
	return &Handler{svc: svc, sessions: sessions, log: log}
}

// Templates parses the embedded page templates for gin.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templatesFS, "templates/*.tmpl"))
}

// sessionID returns the session cookie, minting one on first contact.
func (h *Handler) sessionID(c *gin.Context) string {
	if sid, err := c.Cookie(sessionCookie); err == nil && sid != "" {
		return sid
	}
	sid := uuid.NewString()
	c.SetCookie(sessionCookie, sid, 0, "/", "", false, true)
	return sid
}

func (h *Handler) state(c *gin.Context) (string, session.State) {
	sid := h.sessionID(c)
	st, err := h.sessions.Get(c.Request.Context(), sid)
	if err != nil {
		h.log.Warn("session read failed, starting fresh", zap.Error(err))
		st = session.Initial()
	}
	return sid, st
}

func (h *Handler) apply(c *gin.Context, sid string, st session.State, e session.Event) session.State {
	next := session.Next(st, e)
	if err := h.sessions.Put(c.Request.Context(), sid, next); err != nil {
		h.log.Warn("session write failed", zap.Error(err))
	}
	return next
}

// ---------- HTML UI ----------

type formPage struct {
	Mode      string // "new" | "edit"
	PendingID string
	IDFixed   bool
	Form      kiosk.Form
	Error     string
	Sexes     []model.Sex
	Semesters []model.Semester
}

func newFormPage(st session.State, form kiosk.Form) formPage {
	mode := "new"
	if st.Screen == session.ScreenFormEdit {
		mode = "edit"
	}
	if st.PendingID != "" {
		form.ID = st.PendingID
	}
	return formPage{
		Mode:      mode,
		PendingID: st.PendingID,
		IDFixed:   st.PendingID != "",
		Form:      form,
		Sexes:     model.Sexes(),
		Semesters: model.Semesters(),
	}
}

// Home renders whichever screen the session is on.
func (h *Handler) Home(c *gin.Context) {
	_, st := h.state(c)
	switch st.Screen {
	case session.ScreenFormNew, session.ScreenFormEdit:
		c.HTML(http.StatusOK, "form.tmpl", newFormPage(st, kiosk.Form{}))
	default:
		c.HTML(http.StatusOK, "home.tmpl", gin.H{})
	}
}

// CheckIn handles the home-screen id submit.
func (h *Handler) CheckIn(c *gin.Context) {
	sid, st := h.state(c)
	id := c.PostForm("id")

	visit, err := h.svc.CheckIn(c.Request.Context(), id)
	switch {
	case err == nil:
		c.HTML(http.StatusOK, "success.tmpl", gin.H{
			"Title":   "¡Bienvenido, " + visit.FullName + "! ✅",
			"Message": "🕒 Registro guardado: " + visit.Time,
		})
	case errors.Is(err, kiosk.ErrUserNotFound):
		h.apply(c, sid, st, session.LookupMissed{ID: id})
		c.Redirect(http.StatusSeeOther, "/")
	default:
		var verr *kiosk.ValidationError
		if errors.As(err, &verr) {
			c.HTML(http.StatusOK, "home.tmpl", gin.H{"Error": verr.Reason})
			return
		}
		h.log.Error("check-in failed", zap.String("id", id), zap.Error(err))
		c.HTML(http.StatusOK, "home.tmpl", gin.H{"Error": "Error del sistema. Intenta de nuevo."})
	}
}

// Rectify moves the session into edit mode, carrying whatever id was typed.
func (h *Handler) Rectify(c *gin.Context) {
	sid, st := h.state(c)
	h.apply(c, sid, st, session.RectifyRequested{ID: c.PostForm("id")})
	c.Redirect(http.StatusSeeOther, "/")
}

// SubmitForm handles both registration and edit submits; the mode comes from
// the session, never from the request.
func (h *Handler) SubmitForm(c *gin.Context) {
	sid, st := h.state(c)
	if st.Screen != session.ScreenFormNew && st.Screen != session.ScreenFormEdit {
		// Stale submit after the session already reset.
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	form := kiosk.Form{
		ID:       c.PostForm("id"),
		FullName: c.PostForm("full_name"),
		Program:  c.PostForm("program"),
		Semester: c.PostForm("semester"),
		Email:    c.PostForm("email"),
		Sex:      c.PostForm("sex"),
	}
	if st.PendingID != "" {
		form.ID = st.PendingID
	}

	var title, message string
	var err error
	if st.Screen == session.ScreenFormNew {
		_, visit, rerr := h.svc.Register(c.Request.Context(), form)
		if rerr == nil {
			title = "¡Registro Exitoso! Bienvenido al Gym. 🎉"
			message = "🕒 Registro guardado: " + visit.Time
		}
		err = rerr
	} else {
		_, created, uerr := h.svc.Update(c.Request.Context(), form)
		if uerr == nil {
			title = "Datos actualizados ✅"
			if created {
				title = "Datos registrados ✅"
			}
			message = "Tus datos quedaron guardados."
		}
		err = uerr
	}

	if err != nil {
		page := newFormPage(st, form)
		var verr *kiosk.ValidationError
		if errors.As(err, &verr) {
			page.Error = verr.Reason
		} else {
			h.log.Error("form submit failed", zap.String("screen", string(st.Screen)), zap.Error(err))
			page.Error = "Error al guardar. Intenta de nuevo."
		}
		c.HTML(http.StatusOK, "form.tmpl", page)
		return
	}

	h.apply(c, sid, st, session.SubmitSucceeded{})
	c.HTML(http.StatusOK, "success.tmpl", gin.H{"Title": title, "Message": message})
}

// Cancel abandons the form without touching the store.
func (h *Handler) Cancel(c *gin.Context) {
	sid, st := h.state(c)
	h.apply(c, sid, st, session.Cancelled{})
	c.Redirect(http.StatusSeeOther, "/")
}

// ---------- JSON API ----------

// RegisterDevice issues JWTs for a kiosk terminal.
func (h *Handler) RegisterDevice(issuer, signingKey string, accessTTL, refreshTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			DeviceID string `json:"device_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		tokens, err := auth.Issue(req.DeviceID, "device", issuer, signingKey, accessTTL, refreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
		})
	}
}

// APICheckIn records a visit for an existing user.
func (h *Handler) APICheckIn(c *gin.Context) {
	var req struct {
		ID string `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	visit, err := h.svc.CheckIn(c.Request.Context(), req.ID)
	if err != nil {
		h.apiError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"visit": visit})
}

// APIGetUser looks up one user by id.
func (h *Handler) APIGetUser(c *gin.Context) {
	user, _, err := h.svc.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// APIRegisterUser creates a user and their first visit.
func (h *Handler) APIRegisterUser(c *gin.Context) {
	var form kiosk.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, visit, err := h.svc.Register(c.Request.Context(), form)
	if err != nil {
		h.apiError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "visit": visit})
}

// APIUpdateUser overwrites a user row; the id comes from the path.
func (h *Handler) APIUpdateUser(c *gin.Context) {
	var form kiosk.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	form.ID = c.Param("id")
	user, created, err := h.svc.Update(c.Request.Context(), form)
	if err != nil {
		h.apiError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"user": user, "created": created})
}

// APIListVisits returns the most recent visits.
func (h *Handler) APIListVisits(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	visits, err := h.svc.Visits(c.Request.Context(), limit)
	if err != nil {
		h.apiError(c, err)
		return
	}
	if visits == nil {
		visits = []model.Visit{}
	}
	c.JSON(http.StatusOK, gin.H{"visits": visits})
}

func (h *Handler) apiError(c *gin.Context, err error) {
	var verr *kiosk.ValidationError
	var serr *store.StoreError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, kiosk.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found", "registered": false})
	case errors.As(err, &serr):
		h.log.Error("store error", zap.String("op", serr.Op), zap.String("table", string(serr.Table)), zap.Error(serr.Err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "record store unavailable"})
	default:
		h.log.Error("unexpected error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
