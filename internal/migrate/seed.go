package migrate

import (
	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const groomingCategory = "Грумінг"

var demoCategories = []string{groomingCategory, "Лежаки", "Корм", "Іграшки"}

var demoProducts = []models.Product{
	{
		Name:        "Щітка-пуходерка Trixie двостороння, з дерев'яною ручкою та захисними кульками 10 см / 18 см",
		Description: "Для делікатного догляду за шерстю і підшерстям. М'яка нейлонова щетина і металева щетина з наконечниками.",
		Price:       decimal.NewFromInt(176),
		Stock:       116,
		Image:       "https://masterzoo.ua/content/images/36/700x700l80mc0/73870233333985.webp",
	},
	{
		Name:        "Інструмент для видалення підшерстя FURminator для довгошерстих котів, розмір M-L",
		Description: "Лезо інструменту захоплює і витягує слабо прикріплені волоски підшерстя, зменшуючи линьку на 90%.",
		Price:       decimal.NewFromInt(1237),
		Stock:       0,
		Image:       "https://masterzoo.ua/content/images/43/700x700l80mc0/instrument-dlya-udaleniya-podsherstka-furminator-dlya-dlinnosherstnykh-koshek-razmer-m-l-16156695123102.webp",
	},
	{
		Name:        "Інструмент для видалення підшерстя Trixie 11 см / 15 см",
		Description: "Для видалення зайвого підшерстя, допомагає розчісувати і розрізати ковтуни. Лезо з нержавіючої сталі.",
		Price:       decimal.NewFromInt(973),
		Stock:       35,
		Image:       "https://masterzoo.ua/content/images/4/700x700l80mc0/33299271391883.webp",
	},
}

// seedDemoCatalog заполняет каталог, только если таблица категорий пуста
func seedDemoCatalog(db *gorm.DB, log *zap.Logger) error {
	var cnt int64
	if err := db.Model(&models.Category{}).Count(&cnt).Error; err != nil {
		return err
	}
	if cnt > 0 {
		log.Info("Каталог уже заполнен, пропускаем seed", zap.Int64("categories", cnt))
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var groomingID uint
		for _, name := range demoCategories {
			c := models.Category{Name: name}
			if err := tx.Create(&c).Error; err != nil {
				return err
			}
			if name == groomingCategory {
				groomingID = c.ID
			}
		}
		products := make([]models.Product, len(demoProducts))
		copy(products, demoProducts)
		for i := range products {
			products[i].CategoryID = groomingID
		}
		if err := tx.Create(&products).Error; err != nil {
			return err
		}
		log.Info("Демо-каталог добавлен", zap.Int("products", len(products)))
		return nil
	})
}
