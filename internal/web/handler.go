package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dtv-fixtures/internal/jobs"
	"dtv-fixtures/internal/service"
)

func (h *Handler) page(c *gin.Context, data gin.H) {
	data["Scenarios"] = service.Scenarios
	c.HTML(http.StatusOK, "index.html", data)
}

func (h *Handler) index(c *gin.Context) {
	h.page(c, gin.H{})
}

func formInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.PostForm(key))
	return n
}

func (h *Handler) run(c *gin.Context) {
	seed, _ := strconv.ParseInt(c.PostForm("seed"), 10, 64)
	req := service.Request{
		Scenario: c.PostForm("scenario"),
		Total:    formInt(c, "total"),
		Within:   formInt(c, "within"),
		Seed:     seed,
	}

	// jobs outlive the request, so they hang off the background context
	job := h.jobs.Start(context.Background(), func(ctx context.Context, job *jobs.Job) (*jobs.Result, error) {
		job.Log(fmt.Sprintf("Generando escenario %s...", req.Scenario))
		res, err := h.svc.Generate(ctx, req, job.SetProgress, job.Log)
		if err != nil {
			return nil, err
		}
		return &jobs.Result{
			Kind:     res.Scenario,
			Rows:     res.Rows,
			Output:   res.Path,
			Filename: res.Filename,
			Summary:  res.Summary,
			Problems: res.Problems,
		}, nil
	})

	h.page(c, gin.H{
		"JobID":   job.ID,
		"Message": "Generación iniciada...",
	})
}

func (h *Handler) verify(c *gin.Context) {
	file, err := c.FormFile("input_file")
	if err != nil {
		h.page(c, gin.H{"Message": "Seleccione un archivo."})
		return
	}

	if err := os.MkdirAll(h.cfg.UploadDir, 0755); err != nil {
		h.page(c, gin.H{"Message": "No se pudo guardar el archivo."})
		return
	}
	inputPath := filepath.Join(h.cfg.UploadDir, fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(file.Filename)))
	if err := c.SaveUploadedFile(file, inputPath); err != nil {
		h.page(c, gin.H{"Message": "No se pudo guardar el archivo."})
		return
	}

	job := h.jobs.Start(context.Background(), func(ctx context.Context, job *jobs.Job) (*jobs.Result, error) {
		job.Log(fmt.Sprintf("Verificando %s", file.Filename))
		res, err := h.svc.Verify(ctx, inputPath, job.SetProgress, job.Log)
		if err != nil {
			return nil, err
		}
		out := &jobs.Result{
			Kind:    "verify",
			Rows:    res.Report.Rows,
			Output:  res.ExportPath,
			Summary: res.Report.Summary(),
		}
		if res.ExportPath != "" {
			out.Export = filepath.Base(res.ExportPath)
		}
		return out, nil
	})

	h.page(c, gin.H{
		"JobID":   job.ID,
		"Message": "Verificación iniciada...",
	})
}

func (h *Handler) logs(c *gin.Context) {
	job, err := h.jobs.Get(c.Query("job_id"))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"ok": false, "error": err.Error()})
		return
	}
	snap := job.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"logs":     snap.Logs,
		"status":   snap.Status,
		"progress": snap.Progress,
	})
}

func (h *Handler) status(c *gin.Context) {
	job, err := h.jobs.Get(c.Query("job_id"))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"ok": false})
		return
	}
	snap := job.Snapshot()
	res := gin.H{
		"ok":     true,
		"status": snap.Status,
		"error":  snap.Error,
	}
	if snap.Result != nil {
		res["result"] = snap.Result
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) cancel(c *gin.Context) {
	job, err := h.jobs.Get(c.Query("job_id"))
	if err == nil {
		job.Log("Cancelación solicitada por el usuario...")
		job.Cancel()
	}
	c.JSON(http.StatusOK, gin.H{"ok": err == nil})
}

func (h *Handler) download(c *gin.Context) {
	name := filepath.Base(c.Param("filename"))
	target := h.cfg.OutputPath(name)
	if _, err := os.Stat(target); err != nil {
		c.String(http.StatusNotFound, "archivo no encontrado")
		return
	}
	c.FileAttachment(target, name)
}
