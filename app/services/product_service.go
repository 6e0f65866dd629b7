package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/storage"
)

// MaxGalleryImages caps one gallery upload.
const MaxGalleryImages = 10

// imageTypes maps accepted upload MIME types to the stored extension.
var imageTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
}

// Upload is one file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// ProductInput carries the writable product fields, from JSON on update and
// from form values on create.
type ProductInput struct {
	Name            string   `json:"name"            validate:"required,max=200"`
	Description     string   `json:"description"     validate:"required"`
	RichDescription string   `json:"richDescription"`
	Image           string   `json:"image"`
	Images          []string `json:"images"`
	Brand           string   `json:"brand"`
	Price           float64  `json:"price"           validate:"gte=0"`
	Category        string   `json:"category"        validate:"required,objectid"`
	CountInStock    int      `json:"countInStock"    validate:"gte=0,lte=255"`
	Rating          float64  `json:"rating"          validate:"gte=0"`
	NumReviews      int      `json:"numReviews"      validate:"gte=0"`
	IsFeatured      bool     `json:"isFeatured"`
}

type ProductService struct {
	store *repositories.Store
	disk  storage.Disk
	now   func() time.Time
}

func NewProductService(store *repositories.Store, disk storage.Disk) *ProductService {
	return &ProductService{store: store, disk: disk, now: time.Now}
}

// List returns all products, optionally restricted to the given category
// ids.
func (s *ProductService) List(ctx context.Context, categories []string) ([]models.Product, error) {
	var f repositories.ProductFilter
	for _, c := range categories {
		if strings.TrimSpace(c) == "" {
			continue
		}
		id, err := parseID("categories", c)
		if err != nil {
			return nil, err
		}
		f.Categories = append(f.Categories, id)
	}
	products, err := s.store.Products.Find(ctx, f)
	if err != nil {
		return nil, persistence("list products", err)
	}
	return products, nil
}

// Get returns the product with its category expanded.
func (s *ProductService) Get(ctx context.Context, id string) (models.ProductDetail, error) {
	oid, err := parseID("product", id)
	if err != nil {
		return models.ProductDetail{}, err
	}
	p, err := s.store.Products.FindByID(ctx, oid)
	if err != nil {
		return models.ProductDetail{}, lookup(err, "Product")
	}
	d := models.ProductDetail{Product: p}
	if c, err := s.store.Categories.FindByID(ctx, p.Category); err == nil {
		d.Category = &c
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return models.ProductDetail{}, persistence("find category", err)
	}
	return d, nil
}

// Create stores the main image and inserts the product. origin is the
// scheme://host used to make relative disk URLs absolute.
func (s *ProductService) Create(ctx context.Context, in ProductInput, image *Upload, origin string) (models.Product, error) {
	if image == nil {
		return models.Product{}, invalidField("image", "No image in the request")
	}
	if err := check(in); err != nil {
		return models.Product{}, err
	}
	catID, err := s.category(ctx, in.Category)
	if err != nil {
		return models.Product{}, err
	}
	if _, err := imageExt(image.ContentType); err != nil {
		return models.Product{}, err
	}

	name, url, err := s.putImage(ctx, image, origin)
	if err != nil {
		return models.Product{}, err
	}

	p := in.toModel()
	p.Category = catID
	p.Image = url
	p.DateCreated = s.now().UTC().Truncate(time.Millisecond)
	if err := s.store.Products.Create(ctx, &p); err != nil {
		s.discard(ctx, name)
		return models.Product{}, persistence("create product", err)
	}
	logger.WithCtx(ctx).Info("product created", "product_id", p.ID.Hex(), "image", name)
	return p, nil
}

// Update replaces the writable fields of a product.
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (models.Product, error) {
	oid, err := parseID("product", id)
	if err != nil {
		return models.Product{}, err
	}
	if err := check(in); err != nil {
		return models.Product{}, err
	}
	catID, err := s.category(ctx, in.Category)
	if err != nil {
		return models.Product{}, err
	}

	p := in.toModel()
	p.ID = oid
	p.Category = catID
	if err := s.store.Products.Update(ctx, &p); err != nil {
		return models.Product{}, lookup(err, "Product")
	}
	updated, err := s.store.Products.FindByID(ctx, oid)
	if err != nil {
		return models.Product{}, lookup(err, "Product")
	}
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	oid, err := parseID("product", id)
	if err != nil {
		return err
	}
	if err := s.store.Products.Delete(ctx, oid); err != nil {
		return lookup(err, "Product")
	}
	logger.WithCtx(ctx).Info("product deleted", "product_id", oid.Hex())
	return nil
}

func (s *ProductService) Count(ctx context.Context) (int64, error) {
	n, err := s.store.Products.Count(ctx)
	if err != nil {
		return 0, persistence("count products", err)
	}
	return n, nil
}

// Featured returns up to limit featured products (all when limit <= 0).
// An empty result is NotFound.
func (s *ProductService) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	featured := true
	products, err := s.store.Products.Find(ctx, repositories.ProductFilter{Featured: &featured, Limit: limit})
	if err != nil {
		return nil, persistence("featured products", err)
	}
	if len(products) == 0 {
		return nil, notFound("No featured products found")
	}
	return products, nil
}

// Gallery replaces the product's gallery with the uploaded images.
func (s *ProductService) Gallery(ctx context.Context, id string, images []Upload, origin string) (models.Product, error) {
	oid, err := parseID("product", id)
	if err != nil {
		return models.Product{}, err
	}
	if len(images) > MaxGalleryImages {
		return models.Product{}, invalidField("images", "At most %d images may be uploaded", MaxGalleryImages)
	}
	for i, img := range images {
		if _, err := imageExt(img.ContentType); err != nil {
			return models.Product{}, invalidField(fmt.Sprintf("images[%d]", i), "Invalid image type")
		}
	}
	if _, err := s.store.Products.FindByID(ctx, oid); err != nil {
		return models.Product{}, lookup(err, "Product")
	}

	var names []string
	urls := make([]string, 0, len(images))
	for i := range images {
		name, url, err := s.putImage(ctx, &images[i], origin)
		if err != nil {
			s.discard(ctx, names...)
			return models.Product{}, err
		}
		names = append(names, name)
		urls = append(urls, url)
	}

	p, err := s.store.Products.SetImages(ctx, oid, urls)
	if err != nil {
		s.discard(ctx, names...)
		return models.Product{}, lookup(err, "Product")
	}
	return p, nil
}

func (s *ProductService) category(ctx context.Context, id string) (primitive.ObjectID, error) {
	oid, err := parseID("category", id)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if _, err := s.store.Categories.FindByID(ctx, oid); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return primitive.NilObjectID, invalidField("category", "Invalid Category")
		}
		return primitive.NilObjectID, persistence("find category", err)
	}
	return oid, nil
}

func (s *ProductService) putImage(ctx context.Context, img *Upload, origin string) (name, url string, err error) {
	ext, err := imageExt(img.ContentType)
	if err != nil {
		return "", "", err
	}
	name = UploadName(img.Filename, ext, s.now())
	if err := s.disk.Put(ctx, name, img.Content, img.ContentType); err != nil {
		return "", "", persistence("store image", err)
	}
	return name, publicURL(s.disk.URL(name), origin), nil
}

// discard removes stored files after a failed write. Errors are logged only.
func (s *ProductService) discard(ctx context.Context, names ...string) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	for _, n := range names {
		if err := s.disk.Delete(dctx, n); err != nil {
			logger.WithCtx(ctx).Warn("orphaned upload", "file", n, "error", err)
		}
	}
}

func imageExt(contentType string) (string, error) {
	mt, _, _ := strings.Cut(contentType, ";")
	ext, ok := imageTypes[strings.ToLower(strings.TrimSpace(mt))]
	if !ok {
		return "", invalidField("image", "Invalid image type")
	}
	return ext, nil
}

// UploadName builds the stored file name: the original name with spaces
// replaced by dashes, then "-<unix millis>.<ext>".
func UploadName(original, ext string, at time.Time) string {
	base := path.Base(strings.ReplaceAll(original, "\\", "/"))
	if base == "." || base == "/" {
		base = "upload"
	}
	base = strings.ReplaceAll(base, " ", "-")
	return fmt.Sprintf("%s-%d.%s", base, at.UnixMilli(), ext)
}

func publicURL(u, origin string) string {
	if strings.HasPrefix(u, "/") && origin != "" {
		return strings.TrimRight(origin, "/") + u
	}
	return u
}

func (in ProductInput) toModel() models.Product {
	return models.Product{
		Name:            in.Name,
		Description:     in.Description,
		RichDescription: in.RichDescription,
		Image:           in.Image,
		Images:          in.Images,
		Brand:           in.Brand,
		Price:           in.Price,
		CountInStock:    in.CountInStock,
		Rating:          in.Rating,
		NumReviews:      in.NumReviews,
		IsFeatured:      in.IsFeatured,
	}
}
