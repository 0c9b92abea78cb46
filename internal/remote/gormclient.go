package remote

import (
	"context"

	"github.com/asaskevich/EventBus"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/phytolab/orderport/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GormClient implements Client on top of the hosted relational store.
//
// ReplaceCollection runs its delete-then-insert inside a transaction. The
// wire contract stays non-transactional, but since the backing store supports
// atomic bulk writes there is no reason to risk a truncated collection.
type GormClient struct {
	db         *gorm.DB
	configured bool
	bus        EventBus.Bus
}

func NewGormClient(db *gorm.DB, configured bool) *GormClient {
	return &GormClient{
		db:         db,
		configured: configured && db != nil,
		bus:        EventBus.New(),
	}
}

var _ Client = (*GormClient)(nil)

func (c *GormClient) Configured() bool {
	return c.configured
}

func (c *GormClient) FetchCollection(ctx context.Context, name string) ([]byte, error) {
	if !c.configured {
		return nil, ErrNotConfigured
	}
	switch name {
	case CollectionProducts:
		var rows []domain.Product
		if err := c.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
			return nil, errors.Wrap(err, "fetch products")
		}
		return json.Marshal(rows)
	case CollectionSettings:
		var rec domain.SiteSettingsRecord
		err := c.db.WithContext(ctx).Where("id = ?", domain.SiteSettingsRecordID).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		} else if err != nil {
			return nil, errors.Wrap(err, "fetch settings")
		}
		return json.Marshal(rec.Data)
	case CollectionOrders:
		var rows []domain.Order
		if err := c.db.WithContext(ctx).Order("created_at desc").Find(&rows).Error; err != nil {
			return nil, errors.Wrap(err, "fetch orders")
		}
		return json.Marshal(rows)
	case CollectionUsers:
		var rows []domain.User
		if err := c.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
			return nil, errors.Wrap(err, "fetch users")
		}
		return json.Marshal(rows)
	}
	return nil, ErrUnknownCollection
}

func (c *GormClient) ReplaceCollection(ctx context.Context, name string, records []byte) error {
	if !c.configured {
		return ErrNotConfigured
	}
	switch name {
	case CollectionProducts:
		var rows []domain.Product
		if err := json.Unmarshal(records, &rows); err != nil {
			return errors.Wrap(err, "decode products")
		}
		return c.replaceRows(ctx, &domain.Product{}, rows)
	case CollectionSettings:
		var data domain.SiteSettings
		if err := json.Unmarshal(records, &data); err != nil {
			return errors.Wrap(err, "decode settings")
		}
		return c.upsertSettings(ctx, data)
	case CollectionOrders:
		var rows []domain.Order
		if err := json.Unmarshal(records, &rows); err != nil {
			return errors.Wrap(err, "decode orders")
		}
		return c.replaceRows(ctx, &domain.Order{}, rows)
	case CollectionUsers:
		var rows []domain.User
		if err := json.Unmarshal(records, &rows); err != nil {
			return errors.Wrap(err, "decode users")
		}
		return c.replaceRows(ctx, &domain.User{}, rows)
	}
	return ErrUnknownCollection
}

func (c *GormClient) replaceRows(ctx context.Context, model interface{}, rows interface{}) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
		return tx.CreateInBatches(rows, 200).Error
	})
}

func (c *GormClient) upsertSettings(ctx context.Context, data domain.SiteSettings) error {
	rec := domain.SiteSettingsRecord{ID: domain.SiteSettingsRecordID, Data: data}
	var existing domain.SiteSettingsRecord
	err := c.db.WithContext(ctx).Where("id = ?", domain.SiteSettingsRecordID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.db.WithContext(ctx).Create(&rec).Error
	} else if err != nil {
		return err
	}
	return c.db.WithContext(ctx).Model(&domain.SiteSettingsRecord{}).
		Where("id = ?", domain.SiteSettingsRecordID).
		Update("data", data).Error
}

func (c *GormClient) InsertRecord(ctx context.Context, name string, record []byte) error {
	if !c.configured {
		return ErrNotConfigured
	}
	switch name {
	case CollectionOrders:
		var row domain.Order
		if err := json.Unmarshal(record, &row); err != nil {
			return errors.Wrap(err, "decode order")
		}
		if err := c.db.WithContext(ctx).Create(&row).Error; err != nil {
			return errors.Wrap(err, "insert order")
		}
		c.publish(ChannelOrders, eventInsert, record)
		return nil
	case CollectionUsers:
		var row domain.User
		if err := json.Unmarshal(record, &row); err != nil {
			return errors.Wrap(err, "decode user")
		}
		return errors.Wrap(c.db.WithContext(ctx).Create(&row).Error, "insert user")
	case CollectionProducts:
		var row domain.Product
		if err := json.Unmarshal(record, &row); err != nil {
			return errors.Wrap(err, "decode product")
		}
		return errors.Wrap(c.db.WithContext(ctx).Create(&row).Error, "insert product")
	case CollectionSettings:
		var data domain.SiteSettings
		if err := json.Unmarshal(record, &data); err != nil {
			return errors.Wrap(err, "decode settings")
		}
		return c.upsertSettings(ctx, data)
	}
	return ErrUnknownCollection
}

func (c *GormClient) UpdateRecord(ctx context.Context, name string, record []byte) error {
	if !c.configured {
		return ErrNotConfigured
	}
	switch name {
	case CollectionOrders:
		var row domain.Order
		if err := json.Unmarshal(record, &row); err != nil {
			return errors.Wrap(err, "decode order")
		}
		if err := c.db.WithContext(ctx).Save(&row).Error; err != nil {
			return errors.Wrap(err, "update order")
		}
		c.publish(ChannelOrders, eventUpdate, record)
		return nil
	case CollectionUsers:
		var row domain.User
		if err := json.Unmarshal(record, &row); err != nil {
			return errors.Wrap(err, "decode user")
		}
		return errors.Wrap(c.db.WithContext(ctx).Save(&row).Error, "update user")
	case CollectionProducts:
		var row domain.Product
		if err := json.Unmarshal(record, &row); err != nil {
			return errors.Wrap(err, "decode product")
		}
		return errors.Wrap(c.db.WithContext(ctx).Save(&row).Error, "update product")
	case CollectionSettings:
		var data domain.SiteSettings
		if err := json.Unmarshal(record, &data); err != nil {
			return errors.Wrap(err, "decode settings")
		}
		return c.upsertSettings(ctx, data)
	}
	return ErrUnknownCollection
}

const (
	eventInsert = "insert"
	eventUpdate = "update"
)

func (c *GormClient) publish(channel, kind string, record []byte) {
	c.bus.Publish(channel, kind, record)
}

// Subscribe attaches the callbacks to the named stream. EventBus delivers
// events sequentially per subscriber, so merge callbacks never race.
func (c *GormClient) Subscribe(channel string, onInsert, onUpdate func(record []byte)) error {
	err := c.bus.Subscribe(channel, func(kind string, record []byte) {
		switch kind {
		case eventInsert:
			if onInsert != nil {
				onInsert(record)
			}
		case eventUpdate:
			if onUpdate != nil {
				onUpdate(record)
			}
		}
	})
	if err != nil {
		zap.L().Error("remote subscribe failed", zap.String("channel", channel), zap.Error(err))
	}
	return err
}
