package shopify

// Shop — данные магазина из GET /shop.json.
type Shop struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Email  string `json:"email"`
}

type shopResponse struct {
	Shop Shop `json:"shop"`
}

// Product — товар из GET /products/{id}.json.
type Product struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Handle   string    `json:"handle"`
	Status   string    `json:"status"`
	Images   []Image   `json:"images"`
	Variants []Variant `json:"variants"`
}

// Variant — вариант товара (нужен для SKU).
type Variant struct {
	ID  int64  `json:"id"`
	SKU string `json:"sku"`
}

type productResponse struct {
	Product Product `json:"product"`
}

// Image — изображение товара.
type Image struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Position  int    `json:"position"`
	Src       string `json:"src"`
	Alt       string `json:"alt"`
}

// imageUploadRequest — тело POST /products/{id}/images.json.
//
// Attachment — base64 содержимого файла (способ загрузки без staged upload).
type imageUploadRequest struct {
	Image struct {
		Attachment string `json:"attachment"`
		Alt        string `json:"alt,omitempty"`
		Filename   string `json:"filename,omitempty"`
	} `json:"image"`
}

type imageUploadResponse struct {
	Image Image `json:"image"`
}

// graphqlRequest — тело POST /graphql.json.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// productsBySKUResponse — ответ GraphQL поиска товаров по SKU.
//
// Вложенность повторяет edges/node структуру GraphQL Admin API.
type productsBySKUResponse struct {
	Data struct {
		Products struct {
			Edges []struct {
				Node struct {
					ID       string `json:"id"`
					Title    string `json:"title"`
					Variants struct {
						Edges []struct {
							Node struct {
								ID  string `json:"id"`
								SKU string `json:"sku"`
							} `json:"node"`
						} `json:"edges"`
					} `json:"variants"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}
