package handler // package handler contains the HTTP handlers of the prediction API

import (
	"net/http" // net/http provides status codes

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// homePage is the usage page served at GET /. It documents the request and
// response format of /predict.
const homePage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Iris Flower Prediction API</title></head>
<body>
<h1>🌸 Iris Flower Prediction API</h1>
<p>Send a POST request to /predict with flower measurements in centimetres.</p>
<h3>Example:</h3>
<pre>
POST /predict
Content-Type: application/json

{
    "sepal_length": 5.1,
    "sepal_width": 3.5,
    "petal_length": 1.4,
    "petal_width": 0.2
}
</pre>
<h3>Response:</h3>
<pre>
{
    "prediction": "Setosa",
    "prediction_id": 0,
    "confidence": {"Setosa": 1, "Versicolor": 0, "Virginica": 0},
    "input": {"sepal_length": 5.1, "sepal_width": 3.5, "petal_length": 1.4, "petal_width": 0.2}
}
</pre>
<p>Errors are returned with status 400 as {"error": "..."}.</p>
</body>
</html>
`

// Home serves the static usage page. It does not depend on the model, so it
// is a plain function rather than a PredictHandler method.
func Home(c echo.Context) error { // Home accepts an echo context and returns an error
	return c.HTML(http.StatusOK, homePage) // write the page as text/html with a 200 OK status
}
