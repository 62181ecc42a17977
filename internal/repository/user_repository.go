package repository

import (
	"errors"

	"github.com/walletvault/internal/models"

	"gorm.io/gorm"
)

// UserRepository 账户数据访问接口
type UserRepository interface {
	GetByEmail(email string) (*models.User, error)
	GetByWalletAddress(walletAddress string) (*models.User, error)
	GetByWalletName(walletName string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	Create(user *models.User) error
	UpdateCredentials(id uint, salt, hash string) error
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建账户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetByEmail 根据邮箱获取账户
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.getOne("email = ?", email)
}

// GetByWalletAddress 根据链上地址获取账户
func (r *GormUserRepository) GetByWalletAddress(walletAddress string) (*models.User, error) {
	return r.getOne("wallet_address = ?", walletAddress)
}

// GetByWalletName 根据钱包名获取账户
func (r *GormUserRepository) GetByWalletName(walletName string) (*models.User, error) {
	return r.getOne("wallet_name = ?", walletName)
}

// GetByID 根据 ID 获取账户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create 创建账户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// UpdateCredentials 写入密码盐与哈希。两列同写，已有凭据只会被整体替换，不会被清空。
func (r *GormUserRepository) UpdateCredentials(id uint, salt, hash string) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_salt": salt,
			"password_hash": hash,
		}).Error
}

func (r *GormUserRepository) getOne(query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
