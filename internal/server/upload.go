package server

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type completeRequest struct {
	Filename string `json:"filename"`
	TempID   string `json:"temp_id"`
}

// uploadChunk stores one part of a multipart upload under chunk_dir/<temp_id>/<chunk>.
func (s *Server) uploadChunk(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	index, err := formInt(c, "chunk", 0)
	if err != nil || index < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid chunk index")
	}
	total, err := formInt(c, "chunks", 1)
	if err != nil || total < 1 || index >= total {
		return fiber.NewError(fiber.StatusBadRequest, "invalid chunk count")
	}

	tempID := c.FormValue("temp_id")
	if tempID == "" {
		tempID = uuid.NewString()
	} else if _, err := uuid.Parse(tempID); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid temp_id")
	}

	dir := filepath.Join(s.cfg.ChunkDir, tempID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create chunk dir: %w", err)
	}
	if err := recordTotal(dir, total); err != nil {
		return err
	}
	if err := c.SaveFile(fh, filepath.Join(dir, strconv.Itoa(index))); err != nil {
		return fmt.Errorf("save chunk: %w", err)
	}
	s.log.Debug().Str("temp_id", tempID).Int("chunk", index).Int("chunks", total).Msg("upload chunk stored")
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("chunk %d/%d received", index+1, total),
		"temp_id": tempID,
	})
}

// completeUpload joins the stored parts in numeric order and loads the result.
func (s *Server) completeUpload(c *fiber.Ctx) error {
	var req completeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	name := filepath.Base(strings.TrimSpace(req.Filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return fiber.NewError(fiber.StatusBadRequest, "filename is required")
	}
	if _, err := uuid.Parse(req.TempID); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid temp_id")
	}

	chunkDir := filepath.Join(s.cfg.ChunkDir, req.TempID)
	total, err := readTotal(chunkDir)
	if err != nil {
		return err
	}
	parts, err := partFiles(chunkDir, total)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	target := filepath.Join(s.cfg.UploadDir, name)
	if err := joinParts(target, parts); err != nil {
		_ = os.Remove(target)
		return err
	}
	if err := os.RemoveAll(chunkDir); err != nil {
		s.log.Warn().Err(err).Str("dir", chunkDir).Msg("failed to remove upload chunks")
	}

	s.mu.Lock()
	doc, err := s.learner.Load(target)
	s.mu.Unlock()
	if err != nil {
		_ = os.Remove(target)
		return err
	}
	return c.JSON(fiber.Map{
		"message":     "document processed",
		"file_name":   doc.FileName,
		"chunk_count": doc.ChunkCount,
	})
}

func formInt(c *fiber.Ctx, key string, def int) (int, error) {
	v := c.FormValue(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

// totalFile holds the declared part count next to the parts.
const totalFile = "total"

// recordTotal stores the part count on the first part and rejects later parts
// that declare a different count.
func recordTotal(dir string, total int) error {
	path := filepath.Join(dir, totalFile)
	data, err := os.ReadFile(path)
	if err == nil {
		prev, perr := strconv.Atoi(strings.TrimSpace(string(data)))
		if perr == nil && prev != total {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("chunk count %d does not match %d", total, prev))
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(total)), 0o644)
}

func readTotal(dir string) (int, error) {
	data, err := os.ReadFile(filepath.Join(dir, totalFile))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fiber.NewError(fiber.StatusBadRequest, "unknown temp_id")
		}
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("corrupt chunk count in %s", dir)
	}
	return n, nil
}

// partFiles returns the paths of parts 0..total-1 in order.
func partFiles(dir string, total int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fiber.NewError(fiber.StatusBadRequest, "unknown temp_id")
		}
		return nil, err
	}
	type part struct {
		index int
		path  string
	}
	parts := make([]part, 0, len(entries))
	for _, e := range entries {
		n, err := strconv.Atoi(e.Name())
		if err != nil || e.IsDir() {
			continue
		}
		parts = append(parts, part{n, filepath.Join(dir, e.Name())})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].index < parts[j].index })
	out := make([]string, 0, total)
	for i, p := range parts {
		if p.index != i {
			break
		}
		out = append(out, p.path)
	}
	if len(out) != total || len(parts) != total {
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("missing chunk %d of %d", len(out), total))
	}
	return out, nil
}

func joinParts(target string, parts []string) error {
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create upload: %w", err)
	}
	for _, p := range parts {
		in, err := os.Open(p)
		if err != nil {
			_ = out.Close()
			return err
		}
		_, err = io.Copy(out, in)
		_ = in.Close()
		if err != nil {
			_ = out.Close()
			return fmt.Errorf("join upload parts: %w", err)
		}
	}
	return out.Close()
}
