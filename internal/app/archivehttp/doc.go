// Package archivehttp реализует HTTP-интерфейс сервиса архивов фотографий. Эндпоинты:
//   - GET /: индексная страница (файл из конфигурации или встроенная).
//   - GET /uptime, GET /smoke: бесконечный поток строк с текущим временем, пока клиент на связи.
//   - GET /health: JSON с результатами предстартовой проверки (архиватор, каталог с фото).
//   - GET /archive/{archive_hash}/: ZIP-архив каталога, отдаётся по мере создания.
//
// Для несуществующего архива отвечаем 200 с текстом "Archive was not found or removed".
package archivehttp
