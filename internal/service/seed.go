package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"buybizz/internal/apperror"
	"buybizz/internal/model"
	"buybizz/internal/repository"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedFile is the YAML layout accepted by the catalogue seeder.
type SeedFile struct {
	Vendors []SeedVendor `yaml:"vendors"`
}

type SeedVendor struct {
	ExternalID  string      `yaml:"externalId"`
	Email       string      `yaml:"email"`
	Name        string      `yaml:"name"`
	CompanyName string      `yaml:"companyName"`
	Agents      []SeedAgent `yaml:"agents"`
}

// SeedAgent keeps prices as strings so YAML floats never touch money.
type SeedAgent struct {
	Name             string   `yaml:"name"`
	Description      string   `yaml:"description"`
	ShortDescription string   `yaml:"shortDescription"`
	Price            string   `yaml:"price"`
	OriginalPrice    string   `yaml:"originalPrice"`
	Category         string   `yaml:"category"`
	Tags             []string `yaml:"tags"`
	Features         []string `yaml:"features"`
	ImageURL         string   `yaml:"imageUrl"`
	DemoURL          string   `yaml:"demoUrl"`
	DocsURL          string   `yaml:"docsUrl"`
	Status           string   `yaml:"status"`
}

type SeedResult struct {
	Vendors         int
	ProductsCreated int
	ProductsSkipped int
}

type SeedService interface {
	LoadFile(ctx context.Context, path string) (*SeedResult, error)
	Load(ctx context.Context, r io.Reader) (*SeedResult, error)
}

type seedServiceImpl struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
}

func NewSeedService(userRepo repository.UserRepository, productRepo repository.ProductRepository) SeedService {
	return &seedServiceImpl{
		userRepo:    userRepo,
		productRepo: productRepo,
	}
}

func (s *seedServiceImpl) LoadFile(ctx context.Context, path string) (*SeedResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	return s.Load(ctx, f)
}

// Load applies the seed document. Running it twice changes nothing: vendors
// are upserted by external id and agents already listed under the same
// vendor and name are left alone.
func (s *seedServiceImpl) Load(ctx context.Context, r io.Reader) (*SeedResult, error) {
	var doc SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	result := &SeedResult{}
	for i := range doc.Vendors {
		v := &doc.Vendors[i]
		vendor, err := s.seedVendor(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("seed vendor %q: %w", v.ExternalID, err)
		}
		result.Vendors++

		for j := range v.Agents {
			created, err := s.seedAgent(ctx, vendor, &v.Agents[j])
			if err != nil {
				return nil, fmt.Errorf("seed agent %q for %q: %w", v.Agents[j].Name, v.ExternalID, err)
			}
			if created {
				result.ProductsCreated++
			} else {
				result.ProductsSkipped++
			}
		}
	}

	slog.InfoContext(ctx, "seed applied",
		"vendors", result.Vendors,
		"products_created", result.ProductsCreated,
		"products_skipped", result.ProductsSkipped,
	)
	return result, nil
}

func (s *seedServiceImpl) seedVendor(ctx context.Context, v *SeedVendor) (*model.User, error) {
	if strings.TrimSpace(v.ExternalID) == "" {
		return nil, apperror.Validation("vendor externalId is required")
	}
	company := strings.TrimSpace(v.CompanyName)
	if company == "" {
		company = v.Name
	}

	user, err := s.userRepo.UpsertByExternalID(ctx, &model.User{
		ExternalID: v.ExternalID,
		Email:      v.Email,
		Name:       v.Name,
		Role:       model.RoleVendor,
	})
	if err != nil {
		return nil, err
	}
	// an existing admin keeps its role
	if user.Role == model.RoleAdmin {
		return user, nil
	}
	if err := s.userRepo.UpdateRole(ctx, nil, user.ID, model.RoleVendor, &company); err != nil {
		return nil, err
	}
	user.Role = model.RoleVendor
	user.CompanyName = &company
	return user, nil
}

func (s *seedServiceImpl) seedAgent(ctx context.Context, vendor *model.User, a *SeedAgent) (bool, error) {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return false, apperror.Validation("agent name is required")
	}

	_, err := s.productRepo.FindByVendorAndName(ctx, vendor.ID, name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	price, err := decimal.NewFromString(a.Price)
	if err != nil || !price.IsPositive() {
		return false, apperror.Validation(fmt.Sprintf("invalid price %q", a.Price))
	}
	var original decimal.NullDecimal
	if a.OriginalPrice != "" {
		d, err := decimal.NewFromString(a.OriginalPrice)
		if err != nil {
			return false, apperror.Validation(fmt.Sprintf("invalid originalPrice %q", a.OriginalPrice))
		}
		original = decimal.NewNullDecimal(d)
	}
	status := model.ProductActive
	if a.Status != "" {
		st, ok := model.ParseProductStatus(a.Status)
		if !ok {
			return false, apperror.Validation(fmt.Sprintf("invalid status %q", a.Status))
		}
		status = st
	}

	product := &model.Product{
		VendorID:         vendor.ID,
		Name:             name,
		Description:      a.Description,
		ShortDescription: a.ShortDescription,
		Price:            price,
		OriginalPrice:    original,
		Category:         a.Category,
		Tags:             datatypes.JSONSlice[string](a.Tags),
		Features:         datatypes.JSONSlice[string](a.Features),
		ImageURL:         a.ImageURL,
		DemoURL:          a.DemoURL,
		DocsURL:          a.DocsURL,
		Status:           status,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return false, err
	}
	return true, nil
}
