package generator

import (
	"fmt"
	"math"
	"strings"
	"time"

	"dataSynth/src/metadata"
	"dataSynth/src/table"

	"github.com/pingcap/errors"
	"github.com/shopspring/decimal"
)

var (
	productCategories = []string{
		"Electronics", "Clothing", "Home & Garden", "Sports", "Books",
		"Beauty", "Automotive", "Toys", "Food & Beverage", "Health",
	}
	productBrands = []string{
		"TechCorp", "StyleBrand", "HomeComfort", "SportsPro", "ReadWell",
		"BeautyMax", "AutoParts", "PlayTime", "FreshFood", "WellnessPlus",
	}
	productSizes     = []string{"XS", "S", "M", "L", "XL", "XXL", "One Size"}
	productMaterials = []string{"Cotton", "Plastic", "Metal", "Wood", "Glass", "Leather"}
	productTags      = []string{"popular", "new", "sale", "limited", "bestseller"}
	warrantyMonths   = []int32{0, 6, 12, 24, 36}
)

type productGenerator struct {
	base
}

func newProductGenerator(alloc *metadata.Allocator) *productGenerator {
	return &productGenerator{base: newBase(alloc)}
}

func (g *productGenerator) Table() string {
	return "products"
}

func (g *productGenerator) Generate(rows int) (*table.Table, error) {
	idRange, err := g.alloc.AllocateRange(g.Table(), rows)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ids := idRange.IDs()

	now := time.Now().UTC()

	var (
		skus        = make([]string, rows)
		names       = make([]string, rows)
		brands      = make([]string, rows)
		categories  = make([]string, rows)
		subcats     = make([]string, rows)
		descs       = make([]string, rows)
		prices      = make([]float64, rows)
		costs       = make([]float64, rows)
		weights     = make([]float64, rows)
		dims        = make([]string, rows)
		colors      = make([]string, rows)
		sizes       = make([]string, rows)
		materials   = make([]string, rows)
		stock       = make([]int32, rows)
		reorder     = make([]int32, rows)
		supplierIDs = make([]int32, rows)
		suppliers   = make([]string, rows)
		createdAt   = make([]time.Time, rows)
		updatedAt   = make([]time.Time, rows)
		active      = make([]bool, rows)
		featured    = make([]bool, rows)
		ratingAvg   = make([]float64, rows)
		ratingCount = make([]int32, rows)
		salesRank   = make([]int32, rows)
		seasonal    = make([]bool, rows)
		eco         = make([]bool, rows)
		warranty    = make([]int32, rows)
		tags        = make([]string, rows)
	)

	for i := range rows {
		f := g.faker
		brand := productBrands[g.rng.Intn(len(productBrands))]
		category := productCategories[g.rng.Intn(len(productCategories))]

		brands[i] = brand
		categories[i] = category
		skus[i] = fmt.Sprintf("%s-%s%s",
			strings.ToUpper(brand[:3]), strings.ToUpper(f.LetterN(3)), f.DigitN(3))
		names[i] = f.ProductName()
		subcats[i] = category + " - " + titleWord(f.Word())
		descs[i] = f.Sentence(12)

		// Cost stays below price so margins make sense.
		price := decimal.NewFromFloat(g.price(5.99, 999.99))
		prices[i], _ = price.Round(2).Float64()
		costs[i], _ = price.Mul(decimal.NewFromFloat(0.3 + g.rng.Float64()*0.5)).Round(2).Float64()

		weights[i] = math.Round((0.1+g.rng.Float64()*49.9)*100) / 100
		dims[i] = fmt.Sprintf("%dx%dx%d",
			g.rng.Intn(96)+5, g.rng.Intn(96)+5, g.rng.Intn(96)+5)
		colors[i] = f.Color()
		sizes[i] = productSizes[g.rng.Intn(len(productSizes))]
		materials[i] = productMaterials[g.rng.Intn(len(productMaterials))]

		stock[i] = int32(g.rng.Intn(1001))
		reorder[i] = int32(g.rng.Intn(91) + 10)
		supplierIDs[i] = int32(g.rng.Intn(50) + 1)
		suppliers[i] = f.Company()

		createdAt[i] = g.timeBetween(now.AddDate(-5, 0, 0), now)
		updatedAt[i] = g.timeBetween(createdAt[i], now)

		active[i] = g.chance(0.9)
		featured[i] = g.chance(0.2)
		ratingAvg[i] = math.Round((1+g.rng.Float64()*4)*10) / 10
		ratingCount[i] = int32(g.rng.Intn(5001))
		salesRank[i] = int32(g.rng.Intn(100000) + 1)
		seasonal[i] = g.chance(0.3)
		eco[i] = g.chance(0.25)
		warranty[i] = warrantyMonths[g.rng.Intn(len(warrantyMonths))]
		tags[i] = g.sampleTags()
	}

	tbl, err := table.New(g.Table(), []*table.Column{
		table.Int64Column("product_id", ids, nil),
		table.StringColumn("sku", skus, nil),
		table.StringColumn("product_name", names, nil),
		table.StringColumn("brand", brands, nil),
		table.StringColumn("category", categories, nil),
		table.StringColumn("subcategory", subcats, nil),
		table.StringColumn("description", descs, nil),
		table.Float64Column("price", prices, nil),
		table.Float64Column("cost", costs, nil),
		table.Float64Column("weight_kg", weights, nil),
		table.StringColumn("dimensions_cm", dims, nil),
		table.StringColumn("color", colors, nil),
		table.StringColumn("size", sizes, nil),
		table.StringColumn("material", materials, nil),
		table.Int32Column("stock_quantity", stock, nil),
		table.Int32Column("reorder_level", reorder, nil),
		table.Int32Column("supplier_id", supplierIDs, nil),
		table.StringColumn("supplier_name", suppliers, nil),
		table.TimestampColumn("created_date", createdAt, nil),
		table.TimestampColumn("last_updated", updatedAt, nil),
		table.BoolColumn("is_active", active, nil),
		table.BoolColumn("is_featured", featured, nil),
		table.Float64Column("rating_avg", ratingAvg, nil),
		table.Int32Column("rating_count", ratingCount, nil),
		table.Int32Column("sales_rank", salesRank, nil),
		table.BoolColumn("seasonal", seasonal, nil),
		table.BoolColumn("eco_friendly", eco, nil),
		table.Int32Column("warranty_months", warranty, nil),
		table.StringColumn("tags", tags, nil),
	})
	if err != nil {
		return nil, errors.Trace(err)
	}

	if err := g.alloc.Commit(g.Table(), ids); err != nil {
		return nil, errors.Trace(err)
	}
	return tbl, nil
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

// sampleTags picks 0..3 distinct tags, comma-joined.
func (g *productGenerator) sampleTags() string {
	k := g.rng.Intn(4)
	if k == 0 {
		return ""
	}
	picked := make([]string, len(productTags))
	copy(picked, productTags)
	g.rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return strings.Join(picked[:k], ",")
}
