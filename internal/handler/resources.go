package handler

import (
	"context"
	"net/http"

	"github.com/centaura/cms/internal/db"
	"github.com/gin-gonic/gin"
)

// crudStore is the shape shared by singleton and collection stores.
type crudStore[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id uint) (*T, error)
	Create(ctx context.Context, item *T) (*T, error)
	Update(ctx context.Context, id uint, item *T) (*T, error)
	Delete(ctx context.Context, id uint) error
}

// defaulter 由带有非零默认值的模型实现，在绑定请求体之前调用。
type defaulter interface {
	ApplyDefaults()
}

type resource[T any] struct {
	api   *API
	name  string
	store crudStore[T]
}

// registerResource 在 public 上挂载读接口，在 protected 上挂载写接口。
func registerResource[T any](a *API, public, protected gin.IRoutes, name string, store crudStore[T]) {
	r := &resource[T]{api: a, name: name, store: store}
	path := "/" + name

	public.GET(path, r.list)
	public.GET(path+"/:id", r.get)
	protected.POST(path, r.create)
	protected.PUT(path+"/:id", r.update)
	protected.DELETE(path+"/:id", r.remove)

	a.resources = append(a.resources, name)
}

// RegisterResources mounts the CRUD endpoints of every content entity.
func (a *API) RegisterResources(public, protected gin.IRoutes) {
	c := a.content
	registerResource[db.SEO](a, public, protected, "seo", c.SEO)
	registerResource[db.Navigation](a, public, protected, "navigation", c.Navigation)
	registerResource[db.Hero](a, public, protected, "hero", c.Hero)
	registerResource[db.Stat](a, public, protected, "stats", c.Stats)
	registerResource[db.BrutalMathSection](a, public, protected, "brutal-math", c.BrutalMath)
	registerResource[db.BrutalMathStat](a, public, protected, "brutal-math-stats", c.BrutalMathStats)
	registerResource[db.WhyCentauraSection](a, public, protected, "why-centaura", c.WhyCentaura)
	registerResource[db.WhyCentauraFeature](a, public, protected, "why-centaura-features", c.WhyCentauraFeature)
	registerResource[db.Service](a, public, protected, "services", c.Services)
	registerResource[db.ComparisonTable](a, public, protected, "comparison-table", c.ComparisonTable)
	registerResource[db.ComparisonTableFeature](a, public, protected, "comparison-features", c.ComparisonFeatures)
	registerResource[db.PortfolioProject](a, public, protected, "portfolio", c.Portfolio)
	registerResource[db.PeopleBehindStrategy](a, public, protected, "people-behind-strategy", c.PeopleBehindStrategy)
	registerResource[db.WhyWeBuiltSection](a, public, protected, "why-we-built", c.WhyWeBuilt)
	registerResource[db.ProcessSection](a, public, protected, "process", c.Process)
	registerResource[db.ProcessStep](a, public, protected, "process-steps", c.ProcessSteps)
	registerResource[db.FinalWordSection](a, public, protected, "final-word", c.FinalWord)
	registerResource[db.Testimonial](a, public, protected, "testimonials", c.Testimonials)
	registerResource[db.FAQ](a, public, protected, "faqs", c.FAQs)
	registerResource[db.Footer](a, public, protected, "footer", c.Footer)
	registerResource[db.SocialLink](a, public, protected, "social-links", c.SocialLinks)
	registerResource[db.MediaAsset](a, public, protected, "media-assets", c.Media)
}

func (r *resource[T]) list(c *gin.Context) {
	items, err := r.store.List(c.Request.Context())
	if err != nil {
		r.api.respondServiceError(c, err, "list "+r.name)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (r *resource[T]) get(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusNotFound, "not found")
		return
	}

	item, err := r.store.Get(c.Request.Context(), id)
	if err != nil {
		r.api.respondServiceError(c, err, "get "+r.name)
		return
	}
	c.JSON(http.StatusOK, item)
}

// create 对单例资源是 upsert，对集合资源是插入；二者都返回 201。
func (r *resource[T]) create(c *gin.Context) {
	item := r.newItem()
	if !bindJSON(c, item) {
		return
	}

	created, err := r.store.Create(c.Request.Context(), item)
	if err != nil {
		r.api.respondServiceError(c, err, "create "+r.name)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// update 是整体覆盖：请求体中缺省的字段取默认值。
func (r *resource[T]) update(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusNotFound, "not found")
		return
	}

	item := r.newItem()
	if !bindJSON(c, item) {
		return
	}

	updated, err := r.store.Update(c.Request.Context(), id, item)
	if err != nil {
		r.api.respondServiceError(c, err, "update "+r.name)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (r *resource[T]) remove(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusNotFound, "not found")
		return
	}

	if err := r.store.Delete(c.Request.Context(), id); err != nil {
		r.api.respondServiceError(c, err, "delete "+r.name)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *resource[T]) newItem() *T {
	item := new(T)
	if d, ok := any(item).(defaulter); ok {
		d.ApplyDefaults()
	}
	return item
}
