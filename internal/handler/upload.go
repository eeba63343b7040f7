package handler

import (
    "context"
    "fmt"
    "io"
    "net/http"
    "os"
    "path/filepath"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/rentaly/car-rental/internal/config"
    "github.com/rentaly/car-rental/internal/repository"
)

// maxImageSize caps uploaded car images at 5 MiB.
const maxImageSize = 5 << 20

// UploadHandler writes car images to local disk and records them in
// car_images; the latest upload also becomes the car's image_url.
type UploadHandler struct {
    Cfg    config.Config
    Cars   *repository.CarRepo
    Images *repository.CarImageRepo
}

func NewUploadHandler(cfg config.Config, cars *repository.CarRepo, images *repository.CarImageRepo) *UploadHandler {
    return &UploadHandler{Cfg: cfg, Cars: cars, Images: images}
}

var allowedImageExt = map[string]bool{
    ".jpg":  true,
    ".jpeg": true,
    ".png":  true,
    ".webp": true,
}

// CarImage accepts a multipart "file" field for the car given in the
// "carId" form value and stores it as <uploadDir>/<carID><ext>.
// Re-uploading overwrites the file and appends a new car_images row.
func (h *UploadHandler) CarImage(c echo.Context) error {
    carID, err := strconv.ParseUint(c.FormValue("carId"), 10, 64)
    if err != nil || carID == 0 {
        return fail(c, http.StatusBadRequest, "invalid carId")
    }

    fh, err := c.FormFile("file")
    if err != nil {
        return fail(c, http.StatusBadRequest, "image file required")
    }
    if fh.Size > maxImageSize {
        return fail(c, http.StatusRequestEntityTooLarge, "image exceeds 5MB")
    }
    ext := strings.ToLower(filepath.Ext(fh.Filename))
    if !allowedImageExt[ext] {
        return fail(c, http.StatusBadRequest, "unsupported image type")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Cars.GetByID(ctx, carID); err != nil {
        if err == repository.ErrCarNotFound {
            return fail(c, http.StatusNotFound, "car not found")
        }
        return fail(c, http.StatusInternalServerError, "query failed")
    }

    src, err := fh.Open()
    if err != nil {
        return fail(c, http.StatusInternalServerError, "read upload failed")
    }
    defer src.Close()

    if err := os.MkdirAll(h.Cfg.UploadDir, 0o755); err != nil {
        return fail(c, http.StatusInternalServerError, "upload dir unavailable")
    }
    name := fmt.Sprintf("%d%s", carID, ext)
    path := filepath.Join(h.Cfg.UploadDir, name)
    dst, err := os.Create(path)
    if err != nil {
        return fail(c, http.StatusInternalServerError, "write upload failed")
    }
    defer dst.Close()
    if _, err := io.Copy(dst, src); err != nil {
        return fail(c, http.StatusInternalServerError, "write upload failed")
    }

    url := "/" + filepath.ToSlash(path)
    if _, err := h.Images.Create(ctx, carID, url); err != nil {
        return fail(c, http.StatusInternalServerError, "record image failed")
    }
    if err := h.Cars.SetImageURL(ctx, carID, url); err != nil {
        return fail(c, http.StatusInternalServerError, "record image failed")
    }

    return respond(c, http.StatusCreated, "Image uploaded", echo.Map{
        "car_id":    carID,
        "image_url": url,
    })
}

// ListImages returns every image recorded for a car.
func (h *UploadHandler) ListImages(c echo.Context) error {
    carID, err := pathID(c, "carId")
    if err != nil {
        return fail(c, http.StatusBadRequest, "invalid car id")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    imgs, err := h.Images.ListByCar(ctx, carID)
    if err != nil {
        return fail(c, http.StatusInternalServerError, "query failed")
    }
    type imgDTO struct {
        ID        uint64    `json:"id"`
        CarID     uint64    `json:"car_id"`
        ImageURL  string    `json:"image_url"`
        CreatedAt time.Time `json:"created_at"`
    }
    out := make([]imgDTO, 0, len(imgs))
    for _, im := range imgs {
        out = append(out, imgDTO{ID: im.ID, CarID: im.CarID, ImageURL: im.ImageURL, CreatedAt: im.CreatedAt})
    }
    return respond(c, http.StatusOK, "Images retrieved", out)
}
