package domain

// User 外部身分資料，Account 只引用不擁有
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// IsValidUser 檢查使用者是否合法：非 nil、ID > 0、名稱非空
func IsValidUser(user *User) bool {
	return user != nil && user.ID > 0 && user.Name != ""
}
