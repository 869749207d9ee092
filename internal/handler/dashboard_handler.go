package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/centaura/cms/internal/db"
	"github.com/centaura/cms/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// formApplier 把表单字段写入 item，格式错误记录到 verr。
type formApplier[T any] func(c *gin.Context, item *T, verr *service.ValidationError)

type sectionStore[T any] interface {
	EnsureCurrent(ctx context.Context, placeholder *T) (*T, error)
	Save(ctx context.Context, item *T) (*T, error)
}

// sectionEditor 编辑单例区块：读取时按占位内容懒创建，提交后整体覆盖并跳回原页面。
type sectionEditor[T any] struct {
	api         *API
	path        string
	template    string
	title       string
	store       sectionStore[T]
	placeholder func() *T
	apply       formApplier[T]
	extra       func(ctx context.Context) (gin.H, error)
}

func (e *sectionEditor[T]) show(c *gin.Context) {
	item, err := e.store.EnsureCurrent(c.Request.Context(), e.placeholder())
	if err != nil {
		e.api.dashboardError(c, err)
		return
	}
	e.render(c, http.StatusOK, item, nil)
}

func (e *sectionEditor[T]) submit(c *gin.Context) {
	ctx := c.Request.Context()
	item, err := e.store.EnsureCurrent(ctx, e.placeholder())
	if err != nil {
		e.api.dashboardError(c, err)
		return
	}

	verr := &service.ValidationError{}
	e.apply(c, item, verr)
	if verr.Empty() {
		verr = validateStruct(item)
	}
	if !verr.Empty() {
		e.render(c, http.StatusBadRequest, item, verr.Fields)
		return
	}

	if _, err := e.store.Save(ctx, item); err != nil {
		e.api.dashboardError(c, err)
		return
	}
	c.Redirect(http.StatusFound, e.path+"?saved=1")
}

func (e *sectionEditor[T]) render(c *gin.Context, status int, item *T, fieldErrors map[string][]string) {
	data := gin.H{
		"title":  e.title,
		"item":   item,
		"action": e.path,
		"errors": fieldErrors,
	}
	if e.extra != nil {
		more, err := e.extra(c.Request.Context())
		if err != nil {
			e.api.dashboardError(c, err)
			return
		}
		for key, value := range more {
			data[key] = value
		}
	}
	e.api.renderHTML(c, status, e.template, data)
}

// itemEditor 管理可重复集合的列表、新建、编辑与删除。
type itemEditor[T any] struct {
	api          *API
	path         string
	listTemplate string
	formTemplate string
	title        string
	store        crudStore[T]
	apply        formApplier[T]
}

func (e *itemEditor[T]) list(c *gin.Context) {
	items, err := e.store.List(c.Request.Context())
	if err != nil {
		e.api.dashboardError(c, err)
		return
	}
	e.api.renderHTML(c, http.StatusOK, e.listTemplate, gin.H{
		"title": e.title,
		"items": items,
		"path":  e.path,
	})
}

func (e *itemEditor[T]) showNew(c *gin.Context) {
	e.renderForm(c, http.StatusOK, new(T), e.path+"/new", nil)
}

func (e *itemEditor[T]) create(c *gin.Context) {
	item := new(T)
	if verr := e.bind(c, item); verr != nil {
		e.renderForm(c, http.StatusBadRequest, item, e.path+"/new", verr.Fields)
		return
	}

	if _, err := e.store.Create(c.Request.Context(), item); err != nil {
		e.api.dashboardError(c, err)
		return
	}
	c.Redirect(http.StatusFound, e.path+"?saved=1")
}

func (e *itemEditor[T]) showEdit(c *gin.Context) {
	id, item, ok := e.load(c)
	if !ok {
		return
	}
	e.renderForm(c, http.StatusOK, item, e.editPath(id), nil)
}

func (e *itemEditor[T]) update(c *gin.Context) {
	id, item, ok := e.load(c)
	if !ok {
		return
	}
	if verr := e.bind(c, item); verr != nil {
		e.renderForm(c, http.StatusBadRequest, item, e.editPath(id), verr.Fields)
		return
	}

	if _, err := e.store.Update(c.Request.Context(), id, item); err != nil {
		e.api.dashboardError(c, err)
		return
	}
	c.Redirect(http.StatusFound, e.path+"?saved=1")
}

func (e *itemEditor[T]) remove(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		e.api.dashboardError(c, service.ErrNotFound)
		return
	}
	if err := e.store.Delete(c.Request.Context(), id); err != nil {
		e.api.dashboardError(c, err)
		return
	}
	c.Redirect(http.StatusFound, e.path)
}

func (e *itemEditor[T]) load(c *gin.Context) (uint, *T, bool) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		e.api.dashboardError(c, service.ErrNotFound)
		return 0, nil, false
	}
	item, err := e.store.Get(c.Request.Context(), id)
	if err != nil {
		e.api.dashboardError(c, err)
		return 0, nil, false
	}
	return id, item, true
}

func (e *itemEditor[T]) bind(c *gin.Context, item *T) *service.ValidationError {
	verr := &service.ValidationError{}
	e.apply(c, item, verr)
	if verr.Empty() {
		verr = validateStruct(item)
	}
	if verr.Empty() {
		return nil
	}
	return verr
}

func (e *itemEditor[T]) editPath(id uint) string {
	return e.path + "/" + strconv.FormatUint(uint64(id), 10) + "/edit"
}

func (e *itemEditor[T]) renderForm(c *gin.Context, status int, item *T, action string, fieldErrors map[string][]string) {
	e.api.renderHTML(c, status, e.formTemplate, gin.H{
		"title":  e.title,
		"item":   item,
		"action": action,
		"path":   e.path,
		"errors": fieldErrors,
	})
}

// dashboardError 渲染后台错误页
func (a *API) dashboardError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Something went wrong."
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
		message = "The requested item does not exist."
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		message = verr.Error()
	default:
		a.log.Error("dashboard request failed", "path", c.Request.URL.Path, "error", err)
		c.Error(err)
	}
	a.renderHTML(c, status, "error.html", gin.H{"title": "Error", "message": message})
}

// dashboardPrefix is the base path of the group RegisterDashboard is mounted on.
const dashboardPrefix = "/dashboard"

// RegisterDashboard mounts the section and collection editors on an authenticated
// group based at /dashboard.
func (a *API) RegisterDashboard(auth gin.IRoutes) {
	c := a.content

	mountSection(auth, &sectionEditor[db.SEO]{api: a, path: "/dashboard/seo", template: "seo.html", title: "SEO", store: c.SEO, placeholder: seoPlaceholder, apply: applySEOForm})
	mountSection(auth, &sectionEditor[db.Navigation]{api: a, path: "/dashboard/navigation", template: "navigation.html", title: "Navigation", store: c.Navigation, placeholder: navigationPlaceholder, apply: applyNavigationForm})
	mountSection(auth, &sectionEditor[db.Hero]{api: a, path: "/dashboard/hero", template: "hero.html", title: "Hero", store: c.Hero, placeholder: heroPlaceholder, apply: applyHeroForm})
	mountSection(auth, &sectionEditor[db.Footer]{api: a, path: "/dashboard/footer", template: "footer.html", title: "Footer", store: c.Footer, placeholder: footerPlaceholder, apply: applyFooterForm, extra: a.footerExtras})
	mountSection(auth, &sectionEditor[db.FinalWordSection]{api: a, path: "/dashboard/final-word", template: "final_word.html", title: "Final Word", store: c.FinalWord, placeholder: finalWordPlaceholder, apply: applyFinalWordForm})

	mountItems(auth, &itemEditor[db.Stat]{api: a, path: "/dashboard/stats", listTemplate: "stats.html", formTemplate: "stat_form.html", title: "Stats", store: c.Stats, apply: applyStatForm})
	mountItems(auth, &itemEditor[db.Service]{api: a, path: "/dashboard/services", listTemplate: "services.html", formTemplate: "service_form.html", title: "Services", store: c.Services, apply: applyServiceForm})

	mountList(auth, &itemEditor[db.PortfolioProject]{api: a, path: "/dashboard/portfolio", listTemplate: "portfolio.html", title: "Portfolio", store: c.Portfolio})
	mountList(auth, &itemEditor[db.Testimonial]{api: a, path: "/dashboard/testimonials", listTemplate: "testimonials.html", title: "Testimonials", store: c.Testimonials})
	mountList(auth, &itemEditor[db.FAQ]{api: a, path: "/dashboard/faqs", listTemplate: "faqs.html", title: "FAQs", store: c.FAQs})
}

// groupPath 把完整路径转换为相对 /dashboard 分组的路由；path 本身仍用于表单 action 与跳转。
func groupPath(path string) string {
	return strings.TrimPrefix(path, dashboardPrefix)
}

func mountSection[T any](r gin.IRoutes, e *sectionEditor[T]) {
	route := groupPath(e.path)
	r.GET(route, e.show)
	r.POST(route, e.submit)
}

func mountItems[T any](r gin.IRoutes, e *itemEditor[T]) {
	route := groupPath(e.path)
	r.GET(route, e.list)
	r.GET(route+"/new", e.showNew)
	r.POST(route+"/new", e.create)
	r.GET(route+"/:id/edit", e.showEdit)
	r.POST(route+"/:id/edit", e.update)
	r.POST(route+"/:id/delete", e.remove)
}

func mountList[T any](r gin.IRoutes, e *itemEditor[T]) {
	r.GET(groupPath(e.path), e.list)
}

// footerExtras 页脚编辑页同时展示社交链接
func (a *API) footerExtras(ctx context.Context) (gin.H, error) {
	links, err := a.content.SocialLinks.List(ctx)
	if err != nil {
		return nil, err
	}
	return gin.H{"socialLinks": links}, nil
}

// ShowLogin 渲染后台登录页
func (a *API) ShowLogin(c *gin.Context) {
	if sessions.Default(c).Get(sessionUserKey) != nil {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	a.renderHTML(c, http.StatusOK, "login.html", gin.H{
		"title": "Sign in",
		"next":  c.Query("next"),
	})
}

// DashboardLogin 处理后台登录表单
func (a *API) DashboardLogin(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	next := c.PostForm("next")

	user, err := a.authenticate(username, password)
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			a.log.Error("dashboard login failed", "error", err)
			status = http.StatusInternalServerError
		}
		a.renderHTML(c, status, "login.html", gin.H{
			"title":     "Sign in",
			"next":      next,
			"error":     "Invalid username or password.",
			"loginName": username,
		})
		return
	}

	if _, err := a.startSession(c, user); err != nil {
		a.dashboardError(c, err)
		return
	}
	c.Redirect(http.StatusFound, safeNext(next))
}

// DashboardLogout 处理用户登出
func (a *API) DashboardLogout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		a.log.Warn("clear session failed", "error", err)
	}
	c.Redirect(http.StatusFound, "/dashboard/login")
}

// ShowDashboard 渲染后台主面板
func (a *API) ShowDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	counts := gin.H{}

	type counter interface {
		Count(ctx context.Context) (int64, error)
	}
	for key, store := range map[string]counter{
		"stats":        a.content.Stats,
		"services":     a.content.Services,
		"portfolio":    a.content.Portfolio,
		"testimonials": a.content.Testimonials,
		"faqs":         a.content.FAQs,
		"media":        a.content.Media,
	} {
		total, err := store.Count(ctx)
		if err != nil {
			a.dashboardError(c, err)
			return
		}
		counts[key] = total
	}

	gallery, err := a.content.Media.ListByFolder(ctx, db.GalleryFolder, 0)
	if err != nil {
		a.dashboardError(c, err)
		return
	}
	counts["gallery"] = len(gallery)

	a.renderHTML(c, http.StatusOK, "dashboard.html", gin.H{
		"title":  "Dashboard",
		"counts": counts,
	})
}

// ShowGallery 列出首页图片墙的全部图片
func (a *API) ShowGallery(c *gin.Context) {
	a.renderGallery(c, http.StatusOK, "")
}

func (a *API) renderGallery(c *gin.Context, status int, uploadError string) {
	items, err := a.content.Media.ListByFolder(c.Request.Context(), db.GalleryFolder, 0)
	if err != nil {
		a.dashboardError(c, err)
		return
	}
	a.renderHTML(c, status, "gallery.html", gin.H{
		"title": "Gallery",
		"items": items,
		"limit": service.GalleryLimit,
		"error": uploadError,
	})
}

// UploadGalleryImage 上传图片到图片墙
func (a *API) UploadGalleryImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		a.renderGallery(c, http.StatusBadRequest, errUploadMissing.Error())
		return
	}

	if _, err := a.saveUpload(c, file, db.GalleryFolder); err != nil {
		if errors.Is(err, errUploadNotImage) {
			a.renderGallery(c, http.StatusBadRequest, err.Error())
			return
		}
		a.dashboardError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/dashboard/gallery?saved=1")
}

// DeleteGalleryImage 删除图片及其本地文件
func (a *API) DeleteGalleryImage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.dashboardError(c, service.ErrNotFound)
		return
	}

	ctx := c.Request.Context()
	asset, err := a.content.Media.Get(ctx, id)
	if err != nil {
		a.dashboardError(c, err)
		return
	}
	if err := a.content.Media.Delete(ctx, id); err != nil {
		a.dashboardError(c, err)
		return
	}
	a.removeUpload(asset)
	c.Redirect(http.StatusFound, "/dashboard/gallery")
}
