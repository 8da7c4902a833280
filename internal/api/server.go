package api

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/nex/internal/logger"
	"github.com/samcharles93/nex/internal/nexstore"
	"github.com/samcharles93/nex/internal/version"
	"github.com/samcharles93/nex/pkg/nex"
)

// Server exposes the NEX files of one directory over a read-only HTTP API.
type Server struct {
	root string
	log  logger.Logger
}

func NewServer(root string, log logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	return &Server{root: root, log: log}
}

func (s *Server) Register(e *echo.Echo) {
	e.Use(RequestID(s.log))

	e.GET("/v1/version", s.handleVersion)
	e.GET("/v1/files", s.handleListFiles)
	e.GET("/v1/files/:file", s.handleFile)
	e.GET("/v1/files/:file/variables/:type", s.handleVariables)
	e.GET("/v1/files/:file/intervals", s.handleIntervalNames)
	e.GET("/v1/files/:file/intervals/:name", s.handleInterval)
}

type fileSummary struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type fileResponse struct {
	File      nexstore.FileInfo       `json:"file"`
	Variables []nexstore.VariableInfo `json:"variables"`
}

func (s *Server) handleVersion(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, version.Resolve())
}

func (s *Server) handleListFiles(c *echo.Context) error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
	out := make([]fileSummary, 0, len(entries))
	for _, de := range entries {
		if de.IsDir() || !strings.EqualFold(filepath.Ext(de.Name()), ".nex") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		out = append(out, fileSummary{Name: de.Name(), Size: info.Size()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return writeJSON(c, http.StatusOK, map[string]any{"data": out})
}

func (s *Server) handleFile(c *echo.Context) error {
	f, err := s.open(c)
	if err != nil {
		return writeStoreError(c, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Info()
	if err != nil {
		return writeStoreError(c, err)
	}
	return writeJSON(c, http.StatusOK, fileResponse{File: info, Variables: f.Variables()})
}

func (s *Server) handleVariables(c *echo.Context) error {
	typ, ok := nex.ParseVarType(c.Param("type"))
	if !ok {
		return writeBadRequest(c, "unknown variable type "+strconv.Quote(c.Param("type")))
	}
	indices, err := parseIndices(c.QueryParam("index"))
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	f, err := s.open(c)
	if err != nil {
		return writeStoreError(c, err)
	}
	defer func() { _ = f.Close() }()

	res, err := f.ReadType(c.Request().Context(), typ, indices...)
	if err != nil {
		return writeStoreError(c, err)
	}
	return writeJSON(c, http.StatusOK, res)
}

func (s *Server) handleIntervalNames(c *echo.Context) error {
	f, err := s.open(c)
	if err != nil {
		return writeStoreError(c, err)
	}
	defer func() { _ = f.Close() }()
	return writeJSON(c, http.StatusOK, map[string]any{"data": f.ListIntervalNames()})
}

func (s *Server) handleInterval(c *echo.Context) error {
	f, err := s.open(c)
	if err != nil {
		return writeStoreError(c, err)
	}
	defer func() { _ = f.Close() }()

	iv, err := f.IntervalTimes(c.Request().Context(), c.Param("name"), boolParam(c, "case_sensitive"))
	if err != nil {
		return writeStoreError(c, err)
	}
	return writeJSON(c, http.StatusOK, iv)
}

// open resolves the :file parameter inside the served directory.
func (s *Server) open(c *echo.Context) (*nexstore.File, error) {
	name := c.Param("file")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, newInvalidRequest("invalid file name " + strconv.Quote(name))
	}
	return nexstore.Open(filepath.Join(s.root, name))
}

// parseIndices reads a comma separated list of type-relative indices.
func parseIndices(q string) ([]int, error) {
	if strings.TrimSpace(q) == "" {
		return nil, nil
	}
	parts := strings.Split(q, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, newInvalidRequest("invalid index " + strconv.Quote(p))
		}
		out = append(out, n)
	}
	return out, nil
}

func boolParam(c *echo.Context, name string) bool {
	q := c.QueryParam(name)
	return q == "1" || strings.EqualFold(q, "true")
}
