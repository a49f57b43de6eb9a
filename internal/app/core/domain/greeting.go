package domain

import "fmt"

// GreetUser 產生問候字串
func GreetUser(user User) string {
	return fmt.Sprintf("Hello, %s!", user.Name)
}

// CalculateArea 計算矩形面積
func CalculateArea(width, height float64) float64 {
	return width * height
}
