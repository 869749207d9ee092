package handler

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/centaura/cms/internal/db"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

var (
	errUploadMissing  = errors.New("image file is required")
	errUploadNotImage = errors.New("only image files can be uploaded")
)

// saveUpload 保存上传的图片并登记为媒体资源。
func (a *API) saveUpload(c *gin.Context, file *multipart.FileHeader, folder string) (*db.MediaAsset, error) {
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errUploadNotImage
	}

	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	// 生成唯一文件名
	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	target := filepath.Join(a.uploadDir, name)
	if err := c.SaveUploadedFile(file, target); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	width, height := imageSize(file)
	fileURL := a.uploadURL + "/" + name
	asset := &db.MediaAsset{
		PublicID:     strings.TrimSuffix(folder+"/"+name, ext),
		URL:          &fileURL,
		SecureURL:    &fileURL,
		WebURL:       &fileURL,
		ThumbnailURL: &fileURL,
		Folder:       folder,
		Width:        width,
		Height:       height,
	}
	created, err := a.content.Media.Create(c.Request.Context(), asset)
	if err != nil {
		// 登记失败时不留下孤立文件
		if rmErr := os.Remove(target); rmErr != nil && !os.IsNotExist(rmErr) {
			a.log.Warn("remove orphaned upload failed", "file", name, "error", rmErr)
		}
		return nil, err
	}
	return created, nil
}

// removeUpload 删除本地保存的文件；外部地址不处理。
func (a *API) removeUpload(asset *db.MediaAsset) {
	if asset.URL == nil || !strings.HasPrefix(*asset.URL, a.uploadURL+"/") {
		return
	}
	name := filepath.Base(strings.TrimPrefix(*asset.URL, a.uploadURL+"/"))
	if err := os.Remove(filepath.Join(a.uploadDir, name)); err != nil && !os.IsNotExist(err) {
		a.log.Warn("remove upload failed", "file", name, "error", err)
	}
}

// imageSize 读取图片尺寸，无法识别的格式返回 0。
func imageSize(file *multipart.FileHeader) (int, int) {
	src, err := file.Open()
	if err != nil {
		return 0, 0
	}
	defer src.Close()

	cfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

// UploadMedia 处理 API 图片上传，folder 表单字段缺省为 uploads。
func (a *API) UploadMedia(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, errUploadMissing.Error())
		return
	}

	folder := strings.TrimSpace(c.PostForm("folder"))
	if folder == "" {
		folder = db.DefaultFolder
	}

	asset, err := a.saveUpload(c, file, folder)
	if err != nil {
		if errors.Is(err, errUploadNotImage) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		a.respondServiceError(c, err, "upload media")
		return
	}
	c.JSON(http.StatusCreated, asset)
}
