// Package api contains the control API server.
package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/promptcam/promptcam/internal/capture"
	"github.com/promptcam/promptcam/internal/conf"
	"github.com/promptcam/promptcam/internal/defs"
	"github.com/promptcam/promptcam/internal/logger"
	"github.com/promptcam/promptcam/internal/protocols/httpp"
	"github.com/promptcam/promptcam/internal/recorder"
	"github.com/promptcam/promptcam/internal/recordstore"
	"github.com/promptcam/promptcam/internal/scroll"
)

type apiParent interface {
	logger.Writer

	// APISetMode switches the aspect ratio mode. It fails while a
	// recording is in progress.
	APISetMode(mode conf.AspectRatioMode) error
}

// API is the control API server.
type API struct {
	Version      string
	Started      time.Time
	Address      string
	ReadTimeout  time.Duration
	PathFormat   string
	Graph        *capture.Graph
	Recorder     *recorder.Recorder
	ScrollEngine *scroll.Engine
	Surface      *scroll.Surface
	Parent       apiParent

	httpServer *httpp.Server

	mutex  sync.Mutex
	script string
}

// Initialize initializes API.
func (a *API) Initialize() error {
	router := gin.New()

	group := router.Group("/v1")

	group.GET("/info", a.onInfo)
	group.GET("/state", a.onState)

	group.POST("/record/start", a.onRecordStart)
	group.POST("/record/stop", a.onRecordStop)
	group.POST("/record/cancel", a.onRecordCancel)

	group.POST("/mode/:mode", a.onModeSet)

	group.GET("/scroll", a.onScrollGet)
	group.POST("/scroll/start", a.onScrollStart)
	group.POST("/scroll/stop", a.onScrollStop)
	group.POST("/scroll/faster", a.onScrollFaster)
	group.POST("/scroll/slower", a.onScrollSlower)
	group.POST("/scroll/reset", a.onScrollReset)
	group.POST("/scroll/drag/begin", a.onScrollDragBegin)
	group.POST("/scroll/drag/move", a.onScrollDragMove)
	group.POST("/scroll/drag/end", a.onScrollDragEnd)

	group.GET("/script", a.onScriptGet)
	group.POST("/script", a.onScriptSet)

	group.GET("/recordings/list", a.onRecordingsList)
	group.GET("/recordings/get/:id", a.onRecordingsGet)

	a.httpServer = &httpp.Server{
		Address:     a.Address,
		ReadTimeout: a.ReadTimeout,
		Handler:     router,
		Parent:      a,
	}
	err := a.httpServer.Initialize()
	if err != nil {
		return err
	}

	a.Log(logger.Info, "listener opened on "+a.Address)

	return nil
}

// Close closes the API.
func (a *API) Close() {
	a.Log(logger.Info, "listener is closing")
	a.httpServer.Close()
}

// Log implements logger.Writer.
func (a *API) Log(level logger.Level, format string, args ...interface{}) {
	a.Parent.Log(level, "[API] "+format, args...)
}

func (a *API) writeError(ctx *gin.Context, status int, err error) {
	// show error in logs
	a.Log(logger.Error, err.Error())

	// add error to response
	ctx.JSON(status, &defs.APIError{
		Error: err.Error(),
	})
}

func (a *API) onInfo(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, &defs.APIInfo{
		Version: a.Version,
		Started: a.Started,
	})
}

func (a *API) onState(ctx *gin.Context) {
	format := a.Graph.ActiveFormat()

	ctx.JSON(http.StatusOK, &defs.APIState{
		RecordingState:     a.Recorder.State().String(),
		RecordingID:        a.Recorder.CurrentID(),
		AspectRatioMode:    a.Graph.Mode(),
		ActiveFormatWidth:  format.Width,
		ActiveFormatHeight: format.Height,
		ScrollActive:       a.ScrollEngine.State.Active(),
		ScrollOffset:       a.ScrollEngine.State.Offset(),
		ScrollSpeed:        a.ScrollEngine.State.Speed(),
		ScrollDisplaySpeed: a.ScrollEngine.DisplaySpeed(),
	})
}

func (a *API) onRecordStart(ctx *gin.Context) {
	err := a.Recorder.Start()
	if err != nil {
		a.writeError(ctx, http.StatusBadRequest, err)
		return
	}

	ctx.JSON(http.StatusOK, &defs.APIRecordingStart{
		ID: a.Recorder.CurrentID(),
	})
}

func (a *API) onRecordStop(ctx *gin.Context) {
	path, duration, err := a.Recorder.Stop()
	if err != nil {
		a.writeError(ctx, http.StatusInternalServerError, err)
		return
	}

	ctx.JSON(http.StatusOK, &defs.APIRecordingStop{
		Path:     path,
		Duration: duration.Seconds(),
	})
}

func (a *API) onRecordCancel(ctx *gin.Context) {
	err := a.Recorder.Cancel()
	if err != nil {
		a.writeError(ctx, http.StatusInternalServerError, err)
		return
	}

	ctx.Status(http.StatusOK)
}

func (a *API) onModeSet(ctx *gin.Context) {
	var mode conf.AspectRatioMode
	err := mode.UnmarshalJSON([]byte(`"` + ctx.Param("mode") + `"`))
	if err != nil {
		a.writeError(ctx, http.StatusBadRequest, err)
		return
	}

	err = a.Parent.APISetMode(mode)
	if err != nil {
		a.writeError(ctx, http.StatusBadRequest, err)
		return
	}

	ctx.Status(http.StatusOK)
}

func (a *API) scrollState() *defs.APIScroll {
	return &defs.APIScroll{
		Active:       a.ScrollEngine.State.Active(),
		Offset:       a.ScrollEngine.State.Offset(),
		Speed:        a.ScrollEngine.State.Speed(),
		DisplaySpeed: a.ScrollEngine.DisplaySpeed(),
	}
}

func (a *API) onScrollGet(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, a.scrollState())
}

func (a *API) onScrollStart(ctx *gin.Context) {
	a.ScrollEngine.Start()
	ctx.JSON(http.StatusOK, a.scrollState())
}

func (a *API) onScrollStop(ctx *gin.Context) {
	a.ScrollEngine.Stop()
	ctx.JSON(http.StatusOK, a.scrollState())
}

func (a *API) onScrollFaster(ctx *gin.Context) {
	a.ScrollEngine.IncreaseSpeed()
	ctx.JSON(http.StatusOK, a.scrollState())
}

func (a *API) onScrollSlower(ctx *gin.Context) {
	a.ScrollEngine.DecreaseSpeed()
	ctx.JSON(http.StatusOK, a.scrollState())
}

func (a *API) onScrollReset(ctx *gin.Context) {
	if a.ScrollEngine.State.Active() || a.ScrollEngine.State.UserDriving() {
		a.writeError(ctx, http.StatusBadRequest, fmt.Errorf("scroll is being driven"))
		return
	}

	a.ScrollEngine.State.Reset()
	ctx.JSON(http.StatusOK, a.scrollState())
}

func (a *API) onScrollDragBegin(ctx *gin.Context) {
	a.Surface.BeginDrag()
	ctx.JSON(http.StatusOK, a.scrollState())
}

func (a *API) onScrollDragMove(ctx *gin.Context) {
	var in defs.APIScrollDrag
	err := ctx.ShouldBindJSON(&in)
	if err != nil {
		a.writeError(ctx, http.StatusBadRequest, err)
		return
	}

	a.Surface.Drag(in.Offset)
	ctx.JSON(http.StatusOK, a.scrollState())
}

func (a *API) onScrollDragEnd(ctx *gin.Context) {
	a.Surface.EndDrag()
	ctx.JSON(http.StatusOK, a.scrollState())
}

func (a *API) onScriptGet(ctx *gin.Context) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	ctx.JSON(http.StatusOK, &defs.APIScript{Text: a.script})
}

func (a *API) onScriptSet(ctx *gin.Context) {
	var in defs.APIScript
	err := ctx.ShouldBindJSON(&in)
	if err != nil {
		a.writeError(ctx, http.StatusBadRequest, err)
		return
	}

	a.mutex.Lock()
	a.script = in.Text
	a.mutex.Unlock()

	a.Surface.SetContentLength(float64(len(in.Text)))

	ctx.Status(http.StatusOK)
}

func (a *API) onRecordingsList(ctx *gin.Context) {
	recs, err := recordstore.List(a.PathFormat)
	if err != nil {
		a.writeError(ctx, http.StatusInternalServerError, err)
		return
	}

	data := &defs.APIRecordingList{}
	data.ItemCount = len(recs)

	pageCount, err := paginate(&recs, ctx.Query("itemsPerPage"), ctx.Query("page"))
	if err != nil {
		a.writeError(ctx, http.StatusBadRequest, err)
		return
	}
	data.PageCount = pageCount

	data.Items = make([]*defs.APIRecording, len(recs))
	for i, rec := range recs {
		data.Items[i] = &defs.APIRecording{
			ID:    rec.ID,
			Path:  rec.Fpath,
			Start: rec.Start,
		}
	}

	ctx.JSON(http.StatusOK, data)
}

func (a *API) onRecordingsGet(ctx *gin.Context) {
	rec, err := recordstore.Find(a.PathFormat, ctx.Param("id"))
	if err != nil {
		a.writeError(ctx, http.StatusNotFound, err)
		return
	}

	ctx.JSON(http.StatusOK, &defs.APIRecording{
		ID:    rec.ID,
		Path:  rec.Fpath,
		Start: rec.Start,
	})
}
