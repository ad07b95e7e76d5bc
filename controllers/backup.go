package controllers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"wardrobeapi/backup"
	"wardrobeapi/services"
)

const (
	maxBackupBytes = 200 << 20
	maxBackupBody  = "200M"
)

type ArchiveIn struct {
	// Name defaults to the dated backup filename.
	Name string `json:"name" validate:"omitempty,max=200"`
}

type BackupController struct {
	Backup   *backup.Service
	Archiver *backup.Archiver
}

func (controller *BackupController) BackupRoutes(g *echo.Group) {
	g.GET("/export", controller.Export)
	g.POST("/import", controller.Import)
	g.POST("/archive", controller.Archive)
	g.POST("/archive/restore", controller.Restore)
}

func (controller *BackupController) Export(c echo.Context) error {
	raw, err := controller.Backup.ExportJSON(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, backup.Filename(time.Now())))
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, raw)
}

func (controller *BackupController) Import(c echo.Context) error {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBackupBytes))
	if err != nil {
		return respondError(c, badRequest("could not read backup body"))
	}
	summary, err := controller.Backup.Import(c.Request().Context(), raw)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (controller *BackupController) archiver() (*backup.Archiver, error) {
	if controller.Archiver == nil {
		return nil, fmt.Errorf("backup archive: %w", services.ErrNotConfigured)
	}
	return controller.Archiver, nil
}

func archiveName(c echo.Context) (string, error) {
	var req ArchiveIn
	if c.Request().ContentLength != 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return "", err
		}
	}
	name := strings.TrimSpace(req.Name)
	if strings.Contains(name, "..") {
		return "", badRequest("invalid archive name")
	}
	return name, nil
}

func (controller *BackupController) Archive(c echo.Context) error {
	archiver, err := controller.archiver()
	if err != nil {
		return respondError(c, err)
	}
	name, err := archiveName(c)
	if err != nil {
		return err
	}
	if name == "" {
		name = backup.Filename(time.Now())
	}
	ctx := c.Request().Context()
	raw, err := controller.Backup.ExportJSON(ctx)
	if err != nil {
		return respondError(c, err)
	}
	if err := archiver.Upload(ctx, name, raw); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"name": name, "bytes": len(raw)})
}

func (controller *BackupController) Restore(c echo.Context) error {
	archiver, err := controller.archiver()
	if err != nil {
		return respondError(c, err)
	}
	name, err := archiveName(c)
	if err != nil {
		return err
	}
	if name == "" {
		return badRequest("name is required")
	}
	ctx := c.Request().Context()
	raw, err := archiver.Download(ctx, name)
	if err != nil {
		return respondError(c, err)
	}
	summary, err := controller.Backup.Import(ctx, raw)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}
